package classify

import (
	"testing"

	"github.com/chessreview/review/internal/chessrules"
)

func TestDetectBrilliant_Rejections(t *testing.T) {
	base := BrilliantInput{
		Move:          chessrules.Move{Piece: chessrules.Knight, From: "f3", To: "e5"},
		MoveNumber:    20,
		IsWhiteMove:   true,
		EvalBefore:    0,
		EvalAfter:     0,
		EvalIfBest:    0,
		CentipawnLoss: 10,
		BestMoveUCI:   "f3e5",
		PlayedUCI:     "f3e5",
	}

	t.Run("in check is always rejected", func(t *testing.T) {
		in := base
		in.WasInCheck = true
		if got := DetectBrilliant(in); got.IsBrilliant {
			t.Errorf("expected rejection, got brilliant")
		}
	})

	t.Run("only legal move is always rejected", func(t *testing.T) {
		in := base
		in.OnlyLegalMove = true
		if got := DetectBrilliant(in); got.IsBrilliant {
			t.Errorf("expected rejection, got brilliant")
		}
	})

	t.Run("already winning is rejected", func(t *testing.T) {
		in := base
		in.EvalBefore = 400
		if got := DetectBrilliant(in); got.IsBrilliant {
			t.Errorf("expected rejection, got brilliant")
		}
	})

	t.Run("book phase is rejected", func(t *testing.T) {
		in := base
		in.MoveNumber = 4
		if got := DetectBrilliant(in); got.IsBrilliant {
			t.Errorf("expected rejection, got brilliant")
		}
	})

	t.Run("simple pawn push is rejected", func(t *testing.T) {
		in := base
		in.Move = chessrules.Move{Piece: chessrules.Pawn, From: "e4", To: "e5"}
		if got := DetectBrilliant(in); got.IsBrilliant {
			t.Errorf("expected rejection, got brilliant")
		}
	})

	t.Run("loss above the brilliant ceiling is rejected", func(t *testing.T) {
		in := base
		in.CentipawnLoss = 40
		if got := DetectBrilliant(in); got.IsBrilliant {
			t.Errorf("expected rejection, got brilliant")
		}
	})

	t.Run("not best and not close to best is rejected", func(t *testing.T) {
		in := base
		in.PlayedUCI = "g1f3"
		in.EvalAfter = -500
		in.EvalIfBest = 400
		if got := DetectBrilliant(in); got.IsBrilliant {
			t.Errorf("expected rejection, got brilliant")
		}
	})
}

func TestMateDistanceUnchanged(t *testing.T) {
	in := BrilliantInput{
		IsWhiteMove: true,
		EvalBefore:  EncodeMateScore(4),
		EvalAfter:   EncodeMateScore(3),
	}
	if !mateDistanceUnchanged(in) {
		t.Errorf("expected mate distance to read as unchanged")
	}

	in.EvalAfter = EncodeMateScore(1)
	if mateDistanceUnchanged(in) {
		t.Errorf("expected a much shorter mate to read as a real improvement, not unchanged")
	}
}
