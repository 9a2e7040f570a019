package classify

import "testing"

func scorePtr(v Score) *Score { return &v }

func TestDetectTheme(t *testing.T) {
	t.Run("back rank mate", func(t *testing.T) {
		// White rook delivers mate along the 8th rank.
		fen := "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
		theme, ok := DetectTheme(fen, "a1a8", nil, nil)
		if !ok {
			t.Fatalf("expected a theme match")
		}
		if theme.Name != "back_rank" {
			t.Errorf("theme = %q, want back_rank (%+v)", theme.Name, theme)
		}
	})

	t.Run("knight fork on king and queen", func(t *testing.T) {
		fen := "4k3/1q6/8/5N2/8/8/8/6K1 w - - 0 1"
		theme, ok := DetectTheme(fen, "f5d6", nil, nil)
		if !ok {
			t.Fatalf("expected a theme match")
		}
		if theme.Name != "fork" {
			t.Errorf("theme = %q, want fork (%+v)", theme.Name, theme)
		}
	})

	t.Run("unresolvable move falls through", func(t *testing.T) {
		fen := "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
		if _, ok := DetectTheme(fen, "a1a2", nil, nil); ok {
			t.Errorf("expected no match for a move with no piece on the origin square")
		}
	})

	t.Run("quiet capture falls back to winning_material", func(t *testing.T) {
		fen := "4k3/8/8/8/8/4p3/3P4/4K3 w - - 0 1"
		theme, ok := DetectTheme(fen, "d2e3", nil, nil)
		if !ok {
			t.Fatalf("expected a theme match")
		}
		if theme.Name != "winning_material" || theme.Confidence != 30 {
			t.Errorf("got %+v, want winning_material/30", theme)
		}
	})
}

func TestMaterialGain(t *testing.T) {
	fen := "4k3/8/8/8/8/4r3/3P4/4K3 w - - 0 1"
	gain, ok := MaterialGain(fen, "d2e3", nil, nil)
	if !ok {
		t.Fatalf("expected MaterialGain to resolve the move")
	}
	if gain != 500 {
		t.Errorf("gain = %d, want 500 (captured rook)", gain)
	}
}

func TestMaterialGain_PrefersEvalSwingWhenLarger(t *testing.T) {
	fen := "4k3/8/8/8/8/4p3/3P4/4K3 w - - 0 1"
	before := scorePtr(Score(0))
	after := scorePtr(Score(400))
	gain, ok := MaterialGain(fen, "d2e3", before, after)
	if !ok {
		t.Fatalf("expected MaterialGain to resolve the move")
	}
	if gain != 400 {
		t.Errorf("gain = %d, want 400 (eval swing beats the 100cp pawn)", gain)
	}
}
