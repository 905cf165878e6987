package logits

import (
	"math"
	"math/rand"
	"testing"
)

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// TestSoftmaxSumsToOne checks the normalisation property over random vectors,
// including magnitudes that overflow a naive exp.
func TestSoftmaxSumsToOne(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	for _, scale := range []float32{1, 10, 100, 1000} {
		for n := 1; n <= 64; n *= 2 {
			logs := make([]float32, n)
			for i := range logs {
				logs[i] = (rng.Float32()*2 - 1) * scale
			}
			probs := Softmax(logs)
			if len(probs) != n {
				t.Fatalf("len = %d, want %d", len(probs), n)
			}
			if s := sum(probs); math.Abs(s-1) > 1e-9 {
				t.Fatalf("scale=%v n=%d: sum = %v", scale, n, s)
			}
			for i, p := range probs {
				if math.IsNaN(p) || p < 0 || p > 1 {
					t.Fatalf("probs[%d] = %v out of range", i, p)
				}
			}
		}
	}
}

func TestSoftmaxKnownValues(t *testing.T) {
	t.Parallel()
	probs := Softmax([]float32{0, 0, float32(math.Log(2))})
	want := []float64{0.25, 0.25, 0.5}
	const tol = 1e-6
	for i := range want {
		if math.Abs(probs[i]-want[i]) > tol {
			t.Fatalf("probs[%d] = %v, want %v", i, probs[i], want[i])
		}
	}
}

func TestSoftmaxShiftInvariant(t *testing.T) {
	t.Parallel()
	a := Softmax([]float32{1, 2, 3})
	b := Softmax([]float32{1001, 1002, 1003})
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-6 {
			t.Fatalf("index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSoftmaxEmpty(t *testing.T) {
	t.Parallel()
	if got := Softmax(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
	if got := LogSoftmax(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}

func TestLogSoftmaxMatchesSoftmax(t *testing.T) {
	t.Parallel()
	logs := []float32{-3, 0.5, 2, 7}
	probs := Softmax(logs)
	lp := LogSoftmax(logs)
	for i := range logs {
		if math.Abs(math.Exp(lp[i])-probs[i]) > 1e-9 {
			t.Fatalf("index %d: exp(logprob)=%v prob=%v", i, math.Exp(lp[i]), probs[i])
		}
	}
}

func TestTopKOrdering(t *testing.T) {
	t.Parallel()
	probs := []float64{0.1, 0.4, 0.1, 0.3, 0.1}
	got := TopK(probs, 3)
	wantIDs := []int{1, 3, 0}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("rank %d: id %d, want %d (all=%v)", i, got[i].ID, id, got)
		}
	}
}

func TestTopKClampsAndRejects(t *testing.T) {
	t.Parallel()
	if got := TopK([]float64{0.5, 0.5}, 10); len(got) != 2 {
		t.Fatalf("expected clamp to 2, got %d", len(got))
	}
	if got := TopK([]float64{1}, 0); got != nil {
		t.Fatalf("expected nil for k=0, got %v", got)
	}
}
