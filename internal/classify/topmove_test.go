package classify

import "testing"

func TestClassifyTopMove(t *testing.T) {
	th := DefaultThresholds()

	t.Run("not among top moves defers", func(t *testing.T) {
		ctx := MoveContext{PlayedUCI: "e2e4", TopMoves: []TopMove{{UCI: "d2d4", CP: 20}}}
		if _, ok := ClassifyTopMove(ctx, 10, th); ok {
			t.Errorf("expected no match")
		}
	})

	t.Run("top choice within tolerance and cheap is best", func(t *testing.T) {
		ctx := MoveContext{
			IsWhiteMove: true,
			PlayedUCI:   "e2e4",
			EvalAfter:   25,
			TopMoves:    []TopMove{{UCI: "e2e4", CP: 30}},
		}
		marker, ok := ClassifyTopMove(ctx, 10, th)
		if !ok || marker != Best {
			t.Fatalf("marker=%v ok=%v, want Best", marker, ok)
		}
	})

	t.Run("top choice but engine inconsistent defers", func(t *testing.T) {
		ctx := MoveContext{
			IsWhiteMove: true,
			PlayedUCI:   "e2e4",
			EvalAfter:   300,
			TopMoves:    []TopMove{{UCI: "e2e4", CP: 30}},
		}
		if _, ok := ClassifyTopMove(ctx, 10, th); ok {
			t.Errorf("expected inconsistency to defer to the fallback table")
		}
	})

	t.Run("top choice stays best up to the 100cp floor even with a tighter configured Best threshold", func(t *testing.T) {
		ctx := MoveContext{
			IsWhiteMove: true,
			PlayedUCI:   "e2e4",
			EvalAfter:   -70,
			TopMoves:    []TopMove{{UCI: "e2e4", CP: 0}},
		}
		marker, ok := ClassifyTopMove(ctx, 70, th)
		if !ok || marker != Best {
			t.Fatalf("marker=%v ok=%v, want Best (70cp loss is within the 100cp index-0 floor)", marker, ok)
		}
	})

	t.Run("second choice within good threshold is good", func(t *testing.T) {
		ctx := MoveContext{
			IsWhiteMove: true,
			PlayedUCI:   "g1f3",
			EvalAfter:   0,
			TopMoves:    []TopMove{{UCI: "e2e4", CP: 30}, {UCI: "g1f3", CP: 10}},
		}
		marker, ok := ClassifyTopMove(ctx, 50, th)
		if !ok || marker != Good {
			t.Fatalf("marker=%v ok=%v, want Good", marker, ok)
		}
	})
}
