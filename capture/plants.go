// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package capture

import (
	"math"

	"github.com/dustin/go-humanize"
)

const squareMetersPerHectare = 10000

// PlantCount estimates how many plants fit in area hectares planted at
// spacingA x spacingB meters: floor((area*10000/spacingA)*spacingB).
// It reports false when any input is missing, non-positive or not finite.
func PlantCount(spacingA, spacingB, area float64) (int64, bool) {
	for _, v := range []float64{spacingA, spacingB, area} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return 0, false
		}
	}
	n := math.Floor((area * squareMetersPerHectare / spacingA) * spacingB)
	if math.IsInf(n, 0) || n >= math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// PlantEstimate returns the count and its display text
func PlantEstimate(spacingA, spacingB, area float64) (int64, bool, string) {
	n, ok := PlantCount(spacingA, spacingB, area)
	if !ok {
		return 0, false, "Enter spacing values to calculate"
	}
	if n == 1 {
		return n, true, "1 plant"
	}
	return n, true, humanize.Comma(n) + " plants"
}
