package review

import (
	"testing"

	"github.com/chessreview/review/internal/book"
	"github.com/chessreview/review/internal/chessrules"
	"github.com/chessreview/review/internal/classify"
	"github.com/chessreview/review/internal/config"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// TestReview_BookPliesNeverTouchTheEnginePool builds a game of nothing but
// opening theory and reviews it with a nil engine pool: if any ply fell
// through to the engine, calling a method on a nil *engine.Pool would
// panic, so reaching a result at all proves the book shortcut bypassed it.
func TestReview_BookPliesNeverTouchTheEnginePool(t *testing.T) {
	bookTable, err := book.New()
	if err != nil {
		t.Fatalf("book.New() error: %v", err)
	}

	afterE4, err := chessrules.ReplaySAN(startingFEN, []string{"e4"})
	if err != nil {
		t.Fatalf("ReplaySAN(e4) error: %v", err)
	}
	afterE5, err := chessrules.ReplaySAN(startingFEN, []string{"e4", "e5"})
	if err != nil {
		t.Fatalf("ReplaySAN(e4 e5) error: %v", err)
	}

	game := &chessrules.ParsedGame{
		Plies: []chessrules.GamePly{
			{
				FENBefore:   startingFEN,
				FENAfter:    afterE4,
				Move:        chessrules.Move{SAN: "e4"},
				MoveNumber:  1,
				IsWhiteMove: true,
			},
			{
				FENBefore:   afterE4,
				FENAfter:    afterE5,
				Move:        chessrules.Move{SAN: "e5"},
				MoveNumber:  1,
				IsWhiteMove: false,
			},
		},
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	driver := NewDriver(nil, bookTable, cfg, nil)

	result, err := driver.Review(game, Options{})
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}
	if result.Summary[classify.Book.String()] != 2 {
		t.Errorf("Summary[%q] = %d, want 2 (both plies are book theory)",
			classify.Book.String(), result.Summary[classify.Book.String()])
	}
	if result.Accuracy.White != 100.0 || result.Accuracy.Black != 100.0 {
		t.Errorf("book-only accuracy = %+v, want 100/100", result.Accuracy)
	}
}

func TestMoveAccuracy(t *testing.T) {
	if got := moveAccuracy(0); got != 100.0 {
		t.Errorf("moveAccuracy(0) = %v, want 100", got)
	}
	if got := moveAccuracy(200); got <= 0 || got >= 100 {
		t.Errorf("moveAccuracy(200) = %v, want a value strictly between 0 and 100", got)
	}
	// Losses beyond 200 must not be penalized any further than 200 itself.
	if got, capped := moveAccuracy(900), moveAccuracy(200); got != capped {
		t.Errorf("moveAccuracy(900) = %v, want equal to moveAccuracy(200) = %v", got, capped)
	}
}

func TestAverageAccuracy(t *testing.T) {
	if got := averageAccuracy(0, 0); got != 100.0 {
		t.Errorf("averageAccuracy with zero moves should default to 100, got %v", got)
	}
	if got := averageAccuracy(180, 2); got != 90.0 {
		t.Errorf("averageAccuracy(180, 2) = %v, want 90", got)
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	t.Run("white to move, no flip", func(t *testing.T) {
		raw := &classify.EngineAnalysis{
			Evaluation: 120,
			TopMoves:   []classify.TopMove{{UCI: "e2e4", CP: 120}},
		}
		got := normalizeAnalysis(raw, true)
		if got.Evaluation != 120 {
			t.Errorf("Evaluation = %v, want 120", got.Evaluation)
		}
		if got.TopMoves[0].CP != 120 {
			t.Errorf("TopMoves[0].CP = %v, want 120", got.TopMoves[0].CP)
		}
	})

	t.Run("black to move, flips sign", func(t *testing.T) {
		raw := &classify.EngineAnalysis{
			Evaluation: 120,
			TopMoves:   []classify.TopMove{{UCI: "e7e5", CP: 120}},
		}
		got := normalizeAnalysis(raw, false)
		if got.Evaluation != -120 {
			t.Errorf("Evaluation = %v, want -120", got.Evaluation)
		}
		if got.TopMoves[0].CP != -120 {
			t.Errorf("TopMoves[0].CP = %v, want -120", got.TopMoves[0].CP)
		}
	})
}

func TestACPL(t *testing.T) {
	if got := acpl(0, 0); got != 0 {
		t.Errorf("acpl with zero moves should be 0, got %v", got)
	}
	if got := acpl(300, 3); got != 100.0 {
		t.Errorf("acpl(300, 3) = %v, want 100", got)
	}
}

func TestErrorKindStrings(t *testing.T) {
	cases := map[Kind]string{
		InvalidInput:        "InvalidInput",
		EngineTimeout:       "EngineTimeout",
		EngineUnavailable:   "EngineUnavailable",
		EngineInvalidOutput: "EngineInvalidOutput",
		PoolExhausted:       "PoolExhausted",
		PoolDisposed:        "PoolDisposed",
		CancelledByClient:   "CancelledByClient",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
