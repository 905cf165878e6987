package logits

import (
	"math"
	"sort"
)

// Candidate is one entry of a TopK report.
type Candidate struct {
	ID          int
	Probability float64
}

// Softmax converts a logits vector into a probability vector of the same
// length. The maximum logit is subtracted before exponentiating so large
// magnitudes cannot overflow; the result is mathematically identical to
// exp(l_i) / sum_j exp(l_j).
//
// Accumulation happens in float64. An empty input yields an empty output.
func Softmax(logits []float32) []float64 {
	probs := make([]float64, len(logits))
	if len(logits) == 0 {
		return probs
	}
	maxv := maxLogit(logits)

	var sum float64
	for i, l := range logits {
		e := math.Exp(float64(l) - maxv)
		probs[i] = e
		sum += e
	}
	// sum >= 1 because the max entry contributes exp(0).
	inv := 1.0 / sum
	for i := range probs {
		probs[i] *= inv
	}
	return probs
}

// LogSoftmax returns natural-log probabilities using the same max-shifted
// reduction as Softmax.
func LogSoftmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxv := maxLogit(logits)

	var sum float64
	for _, l := range logits {
		sum += math.Exp(float64(l) - maxv)
	}
	lse := maxv + math.Log(sum)
	for i, l := range logits {
		out[i] = float64(l) - lse
	}
	return out
}

// TopK returns the k most probable ids, highest first. Equal probabilities
// are ordered by ascending id. k larger than the vocabulary is clamped.
func TopK(probs []float64, k int) []Candidate {
	if k <= 0 || len(probs) == 0 {
		return nil
	}
	k = min(k, len(probs))

	// Insertion into a k-sized window: O(V*k).
	top := make([]Candidate, 0, k+1)
	for id, p := range probs {
		if len(top) == k && !better(Candidate{ID: id, Probability: p}, top[k-1]) {
			continue
		}
		pos := sort.Search(len(top), func(i int) bool {
			return better(Candidate{ID: id, Probability: p}, top[i])
		})
		top = append(top, Candidate{})
		copy(top[pos+1:], top[pos:])
		top[pos] = Candidate{ID: id, Probability: p}
		if len(top) > k {
			top = top[:k]
		}
	}
	return top
}

func better(a, b Candidate) bool {
	if a.Probability != b.Probability {
		return a.Probability > b.Probability
	}
	return a.ID < b.ID
}

func maxLogit(logits []float32) float64 {
	maxv := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > maxv {
			maxv = float64(l)
		}
	}
	return maxv
}
