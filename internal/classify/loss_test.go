package classify

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestCentipawnLoss(t *testing.T) {
	cases := []struct {
		name string
		ctx  MoveContext
		want int
	}{
		{
			name: "unreliable but played move is in top moves uses raw swing",
			ctx: MoveContext{
				IsEvalIfBestUnreliable: true,
				IsInTopMoves:           true,
				IsWhiteMove:            true,
				EvalBefore:             40,
				EvalAfter:              10,
			},
			want: 30,
		},
		{
			name: "unreliable, mate kept at same distance costs nothing",
			ctx: MoveContext{
				IsEvalIfBestUnreliable: true,
				IsWhiteMove:            true,
				EvalBefore:             EncodeMateScore(4),
				EvalAfter:              EncodeMateScore(3),
			},
			want: 0,
		},
		{
			name: "unreliable, mate distance grows costs the eval swing",
			ctx: MoveContext{
				IsEvalIfBestUnreliable: true,
				IsWhiteMove:            true,
				EvalBefore:             EncodeMateScore(2),
				EvalAfter:              300,
			},
			want: 1000,
		},
		{
			name: "reliable, no loss, best move played",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalIfBestMove: 40,
				EvalAfter:      40,
				EvalBefore:     30,
			},
			want: 0,
		},
		{
			name: "reliable, white blunders material",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalBefore:     320,
				EvalIfBestMove: 330,
				EvalAfter:      30,
			},
			want: 300,
		},
		{
			name: "reliable, black perspective flips sign",
			ctx: MoveContext{
				IsWhiteMove:    false,
				EvalBefore:     -320,
				EvalIfBestMove: -330,
				EvalAfter:      -30,
			},
			want: 300,
		},
		{
			name: "losing position discount overrides the raw loss",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalBefore:     -150,
				EvalIfBestMove: -120,
				EvalAfter:      -200,
			},
			want: 15,
		},
		{
			name: "losing position but eval improved keeps the raw loss",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalBefore:     -300,
				EvalIfBestMove: -200,
				EvalAfter:      -210,
			},
			want: 10,
		},
		{
			name: "eventual winner's loss is tempered down",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalBefore:     50,
				EvalIfBestMove: 100,
				EvalAfter:      0,
				GameWinner:     boolPtr(true),
			},
			want: 90,
		},
		{
			name: "eventual loser's loss is tempered up",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalBefore:     50,
				EvalIfBestMove: 100,
				EvalAfter:      0,
				GameWinner:     boolPtr(false),
			},
			want: 110,
		},
		{
			name: "zero loss is never multiplied by winner/loser factor",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalBefore:     30,
				EvalIfBestMove: 40,
				EvalAfter:      40,
				GameWinner:     boolPtr(false),
			},
			want: 0,
		},
		{
			name: "loss clamps at 1000",
			ctx: MoveContext{
				IsWhiteMove:    true,
				EvalBefore:     0,
				EvalIfBestMove: 1200,
				EvalAfter:      100,
			},
			want: 1000,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CentipawnLoss(c.ctx)
			if got != c.want {
				t.Errorf("CentipawnLoss() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestPhaseForgiveness(t *testing.T) {
	cases := []struct {
		ply  int
		want float64
	}{
		{0, 0.95},
		{8, 0.95},
		{9, 1.0},
		{40, 1.0},
	}

	for _, c := range cases {
		if got := PhaseForgiveness(c.ply); got != c.want {
			t.Errorf("PhaseForgiveness(%d) = %v, want %v", c.ply, got, c.want)
		}
	}
}
