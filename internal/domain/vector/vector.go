// Package vector holds the embedding arithmetic used by similarity search.
package vector

import "math"

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of a and b. Lengths must match.
func Dot(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// CosineDistance returns 1 - cos(a, b) given precomputed norms.
// Both norms must be nonzero. The result is clamped to [0, 2]
// to absorb floating point noise.
func CosineDistance(a, b []float32, normA, normB float64) float64 {
	d := 1 - Dot(a, b)/(normA*normB)
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
