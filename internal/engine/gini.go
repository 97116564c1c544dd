package engine

import "sort"

// Gini computes the standard Gini coefficient over an income distribution.
// Returns 0 for an empty slice or when total income is 0.
func Gini(incomes []float64) float64 {
	n := len(incomes)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, incomes)
	sort.Float64s(sorted)

	var total, weighted float64
	for i, x := range sorted {
		total += x
		weighted += float64(2*(i+1)-n-1) * x
	}
	if total == 0 {
		return 0
	}
	return weighted / (float64(n) * total)
}
