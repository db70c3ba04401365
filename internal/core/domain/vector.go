package domain

import "math"

// Dot returns the inner product of two equal-length vectors.
// For unit-norm vectors this equals their cosine similarity.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Normalize scales v to unit L2 norm in place and returns it.
// Zero vectors are returned unchanged. Normalising before insertion and
// before querying is a load-bearing precondition of inner-product search.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}
