package classify

import (
	"testing"

	"github.com/chessreview/review/internal/chessrules"
)

func TestAnalyzeSacrifice_Direct(t *testing.T) {
	cases := []struct {
		name            string
		move            chessrules.Move
		evalBefore      Score
		evalAfter       Score
		isWhite         bool
		wantSacrifice   bool
		wantCompensated bool
	}{
		{
			name:            "pawn push never qualifies, value too small",
			move:            chessrules.Move{Piece: chessrules.Pawn},
			evalBefore:      20,
			evalAfter:       30,
			isWhite:         true,
			wantSacrifice:   false,
			wantCompensated: false,
		},
		{
			name:            "quiet minor move with enough value is flagged, left to the caller to filter",
			move:            chessrules.Move{Piece: chessrules.Knight},
			evalBefore:      20,
			evalAfter:       30,
			isWhite:         true,
			wantSacrifice:   true,
			wantCompensated: true,
		},
		{
			name:            "queen sac with big swing is compensated",
			move:            chessrules.Move{Piece: chessrules.Queen, IsCapture: true, Captured: chessrules.Pawn},
			evalBefore:      0,
			evalAfter:       700,
			isWhite:         true,
			wantSacrifice:   true,
			wantCompensated: true,
		},
		{
			name:            "queen sac with no swing is a real loss",
			move:            chessrules.Move{Piece: chessrules.Queen, IsCapture: true, Captured: chessrules.Pawn},
			evalBefore:      0,
			evalAfter:       -750,
			isWhite:         true,
			wantSacrifice:   true,
			wantCompensated: false,
		},
		{
			name:            "rook sac with mate compensates via the swing threshold",
			move:            chessrules.Move{Piece: chessrules.Rook, IsCapture: true, Captured: chessrules.Pawn},
			evalBefore:      0,
			evalAfter:       EncodeMateScore(3),
			isWhite:         true,
			wantSacrifice:   true,
			wantCompensated: true,
		},
		{
			name:            "immediate return too large disqualifies sacrifice",
			move:            chessrules.Move{Piece: chessrules.Queen, IsCapture: true, Captured: chessrules.Rook},
			evalBefore:      0,
			evalAfter:       100,
			isWhite:         true,
			wantSacrifice:   false,
			wantCompensated: false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := AnalyzeSacrifice(c.move, c.evalBefore, c.evalAfter, c.isWhite, nil, nil)
			if res.IsSacrifice != c.wantSacrifice {
				t.Fatalf("IsSacrifice = %v, want %v", res.IsSacrifice, c.wantSacrifice)
			}
			if res.IsSacrifice && res.HasCompensation != c.wantCompensated {
				t.Errorf("HasCompensation = %v, want %v", res.HasCompensation, c.wantCompensated)
			}
		})
	}
}

func TestAnalyzeSacrifice_RookMateCompensation(t *testing.T) {
	move := chessrules.Move{Piece: chessrules.Rook, IsCapture: true, Captured: chessrules.Pawn}
	res := AnalyzeSacrifice(move, 0, EncodeMateScore(3), true, nil, nil)
	if !res.IsSacrifice {
		t.Fatalf("expected sacrifice")
	}
	// A rook sacrifice only compensates through the swing threshold, not
	// the queen-specific mate shortcut; a mate score still produces a
	// large positive swing, so it reads as compensated (with a mate
	// within 8, the compensation type is CompMate).
	if !res.HasCompensation {
		t.Errorf("expected a mating attack to read as compensated")
	}
}
