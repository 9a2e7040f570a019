package puzzle

import (
	"testing"

	"github.com/chessreview/review/internal/classify"
)

func makeEval(fen, playedUCI, bestUCI string, marker classify.MarkerType, cpLoss int, evalBefore, evalAfter classify.Score, isWhite bool, moveNumber int) classify.MoveEvaluation {
	return classify.MoveEvaluation{
		FEN:           fen,
		MoveSAN:       "",
		PlayedUCI:     playedUCI,
		EvalBefore:    evalBefore,
		EvalAfter:     evalAfter,
		BestMove:      bestUCI,
		Marker:        marker,
		CentipawnLoss: cpLoss,
		MoveNumber:    moveNumber,
		IsWhiteMove:   isWhite,
	}
}

func TestExtract_MistakePuzzle(t *testing.T) {
	// White leaves Black's rook on e3 untaken: Blunder, large cp_loss, clears the quality gate
	// unconditionally (marker == Blunder).
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	ev := makeEval(fen, "e1d1", "d2d3", classify.Blunder, 400, 0, -500, true, 10)

	out := Extract([]classify.MoveEvaluation{ev}, ExtractOptions{PlayerIsWhite: true})

	if len(out.Mistakes) != 1 {
		t.Fatalf("got %d mistake puzzles, want 1 (%+v)", len(out.Mistakes), out)
	}
	if out.Mistakes[0].Marker != classify.Blunder {
		t.Errorf("marker = %v, want Blunder", out.Mistakes[0].Marker)
	}
}

func TestExtract_SkipsBeforeMoveSix(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	ev := makeEval(fen, "e1d1", "d2d3", classify.Blunder, 400, 0, -500, true, 3)

	out := Extract([]classify.MoveEvaluation{ev}, ExtractOptions{PlayerIsWhite: true})
	if len(out.Mistakes) != 0 {
		t.Errorf("expected early moves to be skipped, got %+v", out.Mistakes)
	}
}

func TestExtract_SkipsOpponentPlies(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	ev := makeEval(fen, "e1d1", "d2d3", classify.Blunder, 400, 0, -500, true, 10)

	// Player is Black, but the ply is White's move -- must be skipped.
	out := Extract([]classify.MoveEvaluation{ev}, ExtractOptions{PlayerIsWhite: false})
	if len(out.Mistakes) != 0 {
		t.Errorf("expected opponent plies to be skipped, got %+v", out.Mistakes)
	}
}

func TestExtract_SkipsWhenPlayedIsBest(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	ev := makeEval(fen, "d2d3", "d2d3", classify.Blunder, 400, 0, -500, true, 10)

	out := Extract([]classify.MoveEvaluation{ev}, ExtractOptions{PlayerIsWhite: true})
	if len(out.Mistakes) != 0 {
		t.Errorf("expected played==best to be skipped, got %+v", out.Mistakes)
	}
}

func TestExtract_TooLostPositionSkipped(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	// eval_before (White perspective) is -900: well past the -500 floor.
	ev := makeEval(fen, "e1d1", "d2d3", classify.Blunder, 400, -900, -1200, true, 10)

	out := Extract([]classify.MoveEvaluation{ev}, ExtractOptions{PlayerIsWhite: true})
	if len(out.Mistakes) != 0 {
		t.Errorf("expected a too-lost position to be skipped, got %+v", out.Mistakes)
	}
}

func TestExtract_PositivePuzzleRequiresBrilliant(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	great := makeEval(fen, "d2d3", "d2d3", classify.Great, 0, 0, 0, true, 10)
	brilliant := makeEval(fen, "d2e3", "d2e3", classify.Brilliant, 0, 0, 400, true, 10)

	out := Extract([]classify.MoveEvaluation{great, brilliant}, ExtractOptions{PlayerIsWhite: true})
	if len(out.Positive) != 1 {
		t.Fatalf("got %d positive puzzles, want 1 (%+v)", len(out.Positive), out.Positive)
	}
	if !out.Positive[0].IsPositive {
		t.Errorf("expected IsPositive to be set")
	}
}

func TestExtract_RatingAssignment(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	ev := makeEval(fen, "e1d1", "d2d3", classify.Blunder, 400, 0, -500, true, 10)

	out := Extract([]classify.MoveEvaluation{ev}, ExtractOptions{PlayerIsWhite: true, Rating: 1500})
	if len(out.Mistakes) != 1 {
		t.Fatalf("got %d mistake puzzles, want 1", len(out.Mistakes))
	}
	if out.Mistakes[0].Rating != 1800 {
		t.Errorf("rating = %d, want 1800 (1500 + 300)", out.Mistakes[0].Rating)
	}
}

func TestExtract_CapsAtFive(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	var evals []classify.MoveEvaluation
	for i := 0; i < 8; i++ {
		evals = append(evals, makeEval(fen, "e1d1", "d2d3", classify.Blunder, 400, 0, -500, true, 10+i))
	}

	out := Extract(evals, ExtractOptions{PlayerIsWhite: true})
	if len(out.Mistakes) != mistakeCap {
		t.Errorf("got %d mistake puzzles, want the cap of %d", len(out.Mistakes), mistakeCap)
	}
}
