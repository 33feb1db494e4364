package index

import "math"

// CosineSimilarity returns dot(a,b) / (|a|·|b|), accumulated in float64.
// Zero-norm or length-mismatched vectors score 0, never NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	s := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push |s| a hair past 1
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}
