package classify

import "testing"

func almostEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestEvalToWinProbability(t *testing.T) {
	cases := []struct {
		name string
		cp   int
		want float64
	}{
		{"dead even", 0, 0.5},
		{"large white edge is close to certain", 2000, 1.0},
		{"large black edge is close to lost", -2000, 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := EvalToWinProbability(c.cp); !almostEqual(got, c.want, 0.01) {
				t.Errorf("EvalToWinProbability(%d) = %v, want ~%v", c.cp, got, c.want)
			}
		})
	}
}

func TestWinProbabilityToElo(t *testing.T) {
	if got := WinProbabilityToElo(0.5); !almostEqual(got, 0, 0.01) {
		t.Errorf("WinProbabilityToElo(0.5) = %v, want 0", got)
	}
	if got := WinProbabilityToElo(0); got != -400 {
		t.Errorf("WinProbabilityToElo(0) = %v, want -400", got)
	}
	if got := WinProbabilityToElo(1); got != 400 {
		t.Errorf("WinProbabilityToElo(1) = %v, want 400", got)
	}
}

func TestCalculateT1Accuracy(t *testing.T) {
	if got := CalculateT1Accuracy(0); got != 100 {
		t.Errorf("CalculateT1Accuracy(0) = %v, want 100", got)
	}
	if got := CalculateT1Accuracy(-5); got != 100 {
		t.Errorf("CalculateT1Accuracy(negative) = %v, want 100", got)
	}
	low := CalculateT1Accuracy(10)
	high := CalculateT1Accuracy(80)
	if !(low > high) {
		t.Errorf("expected lower ACPL to score higher: low=%v high=%v", low, high)
	}
}

func TestCalculatePerformanceRating(t *testing.T) {
	won := true
	lost := false

	winRating := CalculatePerformanceRating(1500, 90, &won)
	lossRating := CalculatePerformanceRating(1500, 90, &lost)
	drawRating := CalculatePerformanceRating(1500, 90, nil)

	if !(winRating > drawRating && drawRating > lossRating) {
		t.Errorf("expected win > draw > loss, got win=%d draw=%d loss=%d", winRating, drawRating, lossRating)
	}
}

func TestCalculateComplexity(t *testing.T) {
	if got := CalculateComplexity([]int{10}); got != 0 {
		t.Errorf("single eval should have zero complexity, got %v", got)
	}
	flat := CalculateComplexity([]int{50, 50, 50})
	if flat != 0 {
		t.Errorf("identical evals should have zero complexity, got %v", flat)
	}
	spread := CalculateComplexity([]int{-300, 0, 300})
	if spread <= 0 {
		t.Errorf("spread evals should have positive complexity, got %v", spread)
	}
}
