package classify

import (
	"testing"

	"github.com/chessreview/review/internal/chessrules"
)

func TestPieceValue(t *testing.T) {
	cases := []struct {
		piece chessrules.PieceType
		want  int
	}{
		{chessrules.Pawn, 100},
		{chessrules.Knight, 320},
		{chessrules.Bishop, 330},
		{chessrules.Rook, 500},
		{chessrules.Queen, 900},
		{chessrules.King, 20000},
	}
	for _, c := range cases {
		if got := PieceValue(c.piece); got != c.want {
			t.Errorf("PieceValue(%v) = %d, want %d", c.piece, got, c.want)
		}
	}
}

func TestMaterialCount(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want int
	}{
		{
			name: "starting position counts both sides' minors/majors, not pawns or kings",
			fen:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			want: 2*9 + 2*5 + 2*5 + 2*3 + 2*3 + 2*3 + 2*3,
		},
		{
			name: "bare kings have zero material",
			fen:  "8/8/8/8/8/8/8/K6k w - - 0 1",
			want: 0,
		},
		{
			name: "single white queen",
			fen:  "4k3/8/8/8/8/8/8/4K2Q w - - 0 1",
			want: 9,
		},
		{
			name: "ignores everything past the placement field",
			fen:  "4k2q/8/8/8/8/8/8/4K3 b - - 17 42",
			want: 9,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := MaterialCount(c.fen); got != c.want {
				t.Errorf("MaterialCount(%q) = %d, want %d", c.fen, got, c.want)
			}
		})
	}
}
