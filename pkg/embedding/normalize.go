package embedding

import "math"

// Normalize scales a vector to unit length. Cosine distance in pgvector
// assumes normalized vectors (magnitude = 1). Zero vectors are returned
// unchanged to avoid division by zero.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
