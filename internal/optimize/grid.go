package optimize

import (
	"fmt"
	"math"
	"math/big"
)

// ScaleBudget brings a budget onto a thousands scale (1000 <= b < 10000)
// and rounds it down to the nearest hundred. The result is the number of
// grid units the budget is split into before step selection.
func ScaleBudget(budget float64) int {
	magnitude := math.Floor(math.Log10(math.Abs(budget))) - 3
	normalized := budget / math.Pow(10, magnitude)
	normalized = math.Round(normalized*10) / 10
	return int(math.Floor(normalized/100)) * 100
}

// Combinations is the number of ordered splits of units into k
// non-negative parts, C(units+k-1, k-1).
func Combinations(units, k int) *big.Int {
	if k <= 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Binomial(int64(units+k-1), int64(k-1))
}

// StepSize picks the finest step dividing the scaled budget whose grid has
// at most maxCombinations splits over k levers. It returns the step in
// budget units together with the number of steps the budget holds.
func StepSize(budget float64, scaled, k, maxCombinations int) (step float64, units int, err error) {
	if scaled <= 0 {
		return 0, 0, fmt.Errorf("scaled budget %d: %w", scaled, ErrNonPositiveBudget)
	}
	if k <= 0 {
		return 0, 0, ErrNoLevers
	}
	// The coarsest grid (one step) still has k splits.
	if maxCombinations < k {
		return 0, 0, fmt.Errorf("%d combinations allowed, %d levers need at least %d: %w",
			maxCombinations, k, k, ErrCombinationLimit)
	}

	limit := big.NewInt(int64(maxCombinations))
	for s := 1; s <= scaled; s++ {
		if scaled%s != 0 {
			continue
		}
		u := scaled / s
		if Combinations(u, k).Cmp(limit) <= 0 {
			return budget / float64(u), u, nil
		}
	}
	return budget, 1, nil
}

// ForEachComposition calls fn with every ordered split of budget into k
// multiples of budget/units. The last value absorbs rounding so every split
// sums to budget. values is reused between calls; fn must copy it to keep
// it. Iteration stops when fn returns false.
func ForEachComposition(budget float64, units, k int, fn func(values []float64) bool) {
	if k <= 0 || units <= 0 {
		return
	}
	step := budget / float64(units)
	parts := make([]int, k)
	values := make([]float64, k)

	var walk func(pos, remaining int) bool
	walk = func(pos, remaining int) bool {
		if pos == k-1 {
			parts[pos] = remaining
			var sum float64
			for i := 0; i < k-1; i++ {
				values[i] = float64(parts[i]) * step
				sum += values[i]
			}
			values[k-1] = budget - sum
			return fn(values)
		}
		for n := 0; n <= remaining; n++ {
			parts[pos] = n
			if !walk(pos+1, remaining-n) {
				return false
			}
		}
		return true
	}
	walk(0, units)
}

// Compositions collects every split produced by ForEachComposition.
func Compositions(budget float64, units, k int) [][]float64 {
	var out [][]float64
	ForEachComposition(budget, units, k, func(values []float64) bool {
		out = append(out, append([]float64(nil), values...))
		return true
	})
	return out
}
