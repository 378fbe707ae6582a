package ternary

// Ticks returns the interior tick positions i/count for i = 1..count-1.
// The endpoints 0 and 1 are excluded; count <= 1 yields no ticks.
func Ticks(count int) []float64 {
	if count <= 1 {
		return nil
	}
	ticks := make([]float64, 0, count-1)
	for i := 1; i < count; i++ {
		ticks = append(ticks, float64(i)/float64(count))
	}
	return ticks
}
