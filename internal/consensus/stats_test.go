package consensus

import (
	"math"
	"testing"
)

func TestSoftmaxUniformOnEqualInputs(t *testing.T) {
	probs := softmax([]float64{0.5, 0.5, 0.5, 0.5}, 1.0)
	for i, p := range probs {
		if p != 0.25 {
			t.Fatalf("expected exactly 0.25 at %d, got %v", i, p)
		}
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := softmax([]float64{0.1, 0.9, 0.4, 0.77}, 1.0)
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("sum %v", sum)
	}
}

func TestSoftmaxEmpty(t *testing.T) {
	if probs := softmax(nil, 1.0); probs != nil {
		t.Fatalf("expected nil, got %v", probs)
	}
}

func TestSoftmaxOrderPreserved(t *testing.T) {
	probs := softmax([]float64{0.2, 0.9}, 1.0)
	if probs[1] <= probs[0] {
		t.Fatalf("higher confidence should get higher weight: %v", probs)
	}
}

func TestSoftmaxSanitizesNonFinite(t *testing.T) {
	probs := softmax([]float64{math.NaN(), math.Inf(1), math.Inf(-1), 0.5}, 1.0)
	var sum float64
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("non-finite output %v", probs)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("sum %v", sum)
	}
}

func TestPercentileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 1.75},
		{50, 2.5},
		{75, 3.25},
		{100, 4},
	}
	for _, c := range cases {
		got := percentile(sorted, c.p)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("percentile(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestDetectOutlierIQRFourSamples(t *testing.T) {
	idx, found := detectOutlierIQR([]float64{0.90, 0.88, 0.92, 0.12})
	if !found {
		t.Fatal("expected outlier")
	}
	if idx != 3 {
		t.Fatalf("expected index 3, got %d", idx)
	}
}

func TestDetectOutlierIQRNoneOnTightCluster(t *testing.T) {
	if _, found := detectOutlierIQR([]float64{0.89, 0.90, 0.91, 0.92}); found {
		t.Fatal("unexpected outlier in tight cluster")
	}
}

func TestDetectOutlierSmallSamplePermissive(t *testing.T) {
	// Spread below the extreme threshold: three samples report nothing.
	if _, found := detectOutlierIQR([]float64{0.90, 0.88, 0.15}); found {
		t.Fatal("small sample should be permissive")
	}
}

func TestDetectOutlierSmallSampleExtremeSpread(t *testing.T) {
	idx, found := detectOutlierIQR([]float64{0.95, 0.90, 0.05})
	if !found {
		t.Fatal("expected extreme small-sample spread to flag")
	}
	if idx != 2 {
		t.Fatalf("expected index 2, got %d", idx)
	}
}

func TestDetectOutlierIdenticalValues(t *testing.T) {
	if _, found := detectOutlierIQR([]float64{0.7, 0.7, 0.7, 0.7}); found {
		t.Fatal("identical values cannot contain an outlier")
	}
}

func TestNormalizedEntropyBounds(t *testing.T) {
	if e := normalizedEntropy([]float64{1, 0}); e != 0 {
		t.Fatalf("concentrated distribution entropy = %v, want 0", e)
	}
	if e := normalizedEntropy([]float64{0.5, 0.5}); math.Abs(e-1) > 1e-12 {
		t.Fatalf("uniform distribution entropy = %v, want 1", e)
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-0.3) != 0 || clamp01(1.4) != 1 || clamp01(0.5) != 0.5 {
		t.Fatal("clamp01 misbehaves")
	}
}
