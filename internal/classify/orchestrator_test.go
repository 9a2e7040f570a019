package classify

import (
	"testing"

	"github.com/chessreview/review/internal/chessrules"
)

func TestOrchestrate_Book(t *testing.T) {
	in := OrchestratorInput{
		FENBefore:  "startpos",
		PlayedSAN:  "e4",
		MoveNumber: 1,
		IsBook:     true,
		Thresholds: DefaultThresholds(),
	}
	got := Orchestrate(in)
	if got.Marker != Book || got.CentipawnLoss != 0 {
		t.Fatalf("got %+v, want Book/0", got)
	}
}

func TestOrchestrate_SANMateSuffix(t *testing.T) {
	in := OrchestratorInput{
		FENBefore:  "whatever",
		PlayedSAN:  "Qh7#",
		MoveNumber: 30,
		Thresholds: DefaultThresholds(),
	}
	got := Orchestrate(in)
	if got.Marker != Best || got.CentipawnLoss != 0 {
		t.Fatalf("got %+v, want Best/0", got)
	}
}

func TestOrchestrate_FallsThroughToBlunder(t *testing.T) {
	in := OrchestratorInput{
		FENBefore:   "whatever",
		PlayedSAN:   "Qxh7",
		PlayedUCI:   "d1h7",
		IsWhiteMove: true,
		MoveNumber:  20,
		Move:        chessrules.Move{Piece: chessrules.Queen, IsCapture: true, Captured: chessrules.Pawn, SAN: "Qxh7"},
		AnalysisBefore: &EngineAnalysis{
			Evaluation: 30,
			BestMove:   "g1f3",
			TopMoves:   []TopMove{{UCI: "g1f3", CP: 30}, {UCI: "d2d4", CP: 20}},
			Depth:      18,
		},
		AnalysisAfter: &EngineAnalysis{
			Evaluation: -700,
			Depth:      18,
		},
		Thresholds: DefaultThresholds(),
	}
	got := Orchestrate(in)
	if got.Marker != Blunder {
		t.Fatalf("got marker %v, want Blunder (full eval: %+v)", got.Marker, got)
	}
}

func TestOrchestrate_GoodMoveIsBest(t *testing.T) {
	in := OrchestratorInput{
		FENBefore:  "whatever",
		PlayedSAN:  "Nf3",
		MoveNumber: 20,
		Move:       chessrules.Move{Piece: chessrules.Knight, SAN: "Nf3"},
		AnalysisBefore: &EngineAnalysis{
			Evaluation: 30,
			BestMove:   "g1f3",
			TopMoves:   []TopMove{{UCI: "g1f3", CP: 30}, {UCI: "d2d4", CP: 20}},
			Depth:      18,
		},
		AnalysisAfter: &EngineAnalysis{
			Evaluation: 30,
			Depth:      18,
		},
		Thresholds: DefaultThresholds(),
	}
	got := Orchestrate(in)
	if got.Marker != Best || got.CentipawnLoss != 0 {
		t.Fatalf("got %+v, want Best/0", got)
	}
}
