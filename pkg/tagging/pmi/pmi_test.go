package pmi

import (
	"math"
	"testing"
)

func TestPMIAssociatedPair(t *testing.T) {
	calc := NewCalculator(1.0)

	// "golang" and "concurrency" appear together in almost every bookmark
	// that carries either tag.
	associated := calc.PMI(40, 50, 45, 1000)
	// "golang" and "cooking" overlap far less than chance would predict.
	unrelated := calc.PMI(1, 500, 400, 1000)

	if associated <= unrelated {
		t.Errorf("PMI of associated pair (%f) should exceed unrelated pair (%f)", associated, unrelated)
	}
	if associated <= 0 {
		t.Errorf("Strongly associated pair should have positive PMI, got %f", associated)
	}
}

func TestPMIIndependentPairNearZero(t *testing.T) {
	calc := NewCalculator(1.0)

	// co ≈ dfA*dfB/N is statistical independence
	score := calc.PMI(10, 100, 100, 1000)
	if math.Abs(score) > 0.2 {
		t.Errorf("Independent pair should score near zero, got %f", score)
	}
}

func TestPMIEmptyCorpus(t *testing.T) {
	calc := NewCalculator(1.0)

	if score := calc.PMI(5, 10, 10, 0); score != 0 {
		t.Errorf("Zero total bookmarks should yield 0, got %f", score)
	}
	if score := calc.NPMI(5, 10, 10, 0); score != 0 {
		t.Errorf("Zero total bookmarks should yield NPMI 0, got %f", score)
	}
}

func TestNPMIBounded(t *testing.T) {
	calc := NewCalculator(1.0)

	cases := []struct {
		nAB, nA, nB, n int64
	}{
		{40, 50, 45, 1000},
		{1, 500, 400, 1000},
		{10, 10, 10, 10000},
		{1, 1, 1, 2},
	}
	for _, c := range cases {
		score := calc.NPMI(c.nAB, c.nA, c.nB, c.n)
		if score < -1.0-1e-9 || score > 1.0+1e-9 {
			t.Errorf("NPMI(%d,%d,%d,%d) = %f out of [-1,1]", c.nAB, c.nA, c.nB, c.n, score)
		}
	}
}

func TestNPMIZeroCooccurrence(t *testing.T) {
	calc := NewCalculator(1.0)

	if score := calc.NPMI(0, 50, 50, 1000); score != 0 {
		t.Errorf("Zero co-occurrence should yield NPMI 0, got %f", score)
	}
}

func TestScoreDispatch(t *testing.T) {
	calc := NewCalculatorFromConfig(DefaultConfig())

	pmi := calc.Score(40, 50, 45, 1000, false)
	npmi := calc.Score(40, 50, 45, 1000, true)

	if pmi != calc.PMI(40, 50, 45, 1000) {
		t.Error("Score(useNPMI=false) should match PMI")
	}
	if npmi != calc.NPMI(40, 50, 45, 1000) {
		t.Error("Score(useNPMI=true) should match NPMI")
	}
}

func TestNewCalculatorDefaultsEpsilon(t *testing.T) {
	// Non-positive epsilon falls back to 1.0 rather than dividing by zero
	calc := NewCalculator(0)

	score := calc.PMI(40, 50, 45, 1000)
	want := NewCalculator(1.0).PMI(40, 50, 45, 1000)
	if score != want {
		t.Errorf("Calculator with epsilon 0 should behave like epsilon 1.0: got %f, want %f", score, want)
	}
}
