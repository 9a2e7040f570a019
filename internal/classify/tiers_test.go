package classify

import (
	"testing"

	"github.com/chessreview/review/internal/chessrules"
)

func TestDetectGreat(t *testing.T) {
	in := TierInput{
		Move:          chessrules.Move{IsCheck: true},
		CentipawnLoss: 20,
		MoveNumber:    10,
		IsWhiteMove:   true,
	}
	if got := DetectGreat(in); !got.Matched {
		t.Fatalf("expected a check within 25cp to match Great")
	}

	in.Move = chessrules.Move{}
	in.CentipawnLoss = 30
	if got := DetectGreat(in); got.Matched {
		t.Errorf("expected a plain quiet move with no bonus to miss Great, got %+v", got)
	}
}

func TestDetectMistake_AdvantageLoss(t *testing.T) {
	in := TierInput{
		CentipawnLoss: 80,
		EvalBefore:    100,
		EvalAfter:     10,
		IsWhiteMove:   true,
		MoveNumber:    10,
	}
	got := DetectMistake(in)
	if !got.Matched || got.Type != "advantage_loss" {
		t.Fatalf("expected advantage_loss mistake, got %+v", got)
	}
}

func TestDetectMistake_SkipsWhenAlreadyLosing(t *testing.T) {
	in := TierInput{
		CentipawnLoss: 150,
		EvalBefore:    -400,
		EvalAfter:     -500,
		IsWhiteMove:   true,
		MoveNumber:    10,
	}
	if got := DetectMistake(in); got.Matched {
		t.Errorf("expected no mistake when already losing badly, got %+v", got)
	}
}

func TestDetectBlunder_StillWinningIsNeverBlunder(t *testing.T) {
	in := TierInput{
		CentipawnLoss: 400,
		EvalBefore:    300,
		EvalAfter:     250,
		IsWhiteMove:   true,
		MoveNumber:    10,
	}
	if got := DetectBlunder(in); got.Matched {
		t.Errorf("expected P9 still-winning leniency to suppress blunder, got %+v", got)
	}
}

func TestDetectBlunder_GameTurning(t *testing.T) {
	in := TierInput{
		CentipawnLoss: 700,
		EvalBefore:    250,
		EvalAfter:     -250,
		IsWhiteMove:   true,
		MoveNumber:    10,
	}
	got := DetectBlunder(in)
	if !got.Matched || got.Type != "game_turning" {
		t.Fatalf("expected a game-turning blunder, got %+v", got)
	}
}

func TestDetectMiss(t *testing.T) {
	in := TierInput{
		Move:          chessrules.Move{IsCapture: true},
		CentipawnLoss: 120,
		EvalBefore:    50,
		EvalAfter:     -40,
		IsWhiteMove:   true,
		GamePhase:     PhaseMiddlegame,
	}
	if got := DetectMiss(in); !got.Matched {
		t.Fatalf("expected a missed capture to match Miss")
	}
}
