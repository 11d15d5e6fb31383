// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package inference implements the forward-chaining diagnostic engine and
the certainty-factor algebra it is built on.

Certainty factors live in [-1.0, 1.0]: 1.0 is full belief, -1.0 full
disbelief, 0.0 no information. Evidence from independently firing rules
is merged with Combine, which is commutative and associative, so the
final certainty of a diagnosis does not depend on rule ordering.
*/
package inference

import "math"

// Combine merges two certainty factors for the same hypothesis coming
// from independent evidence.
//
// Both positive:   cf1 + cf2*(1-cf1)
// Both negative:   cf1 + cf2*(1+cf1)
// Mixed sign:      (cf1 + cf2) / (1 - min(|cf1|, |cf2|))
//
// The mixed-sign branch saturates at ±1.0 when one input is full belief
// and the other full disbelief.
func Combine(cf1, cf2 float64) float64 {
	switch {
	case cf1 >= 0 && cf2 >= 0:
		return cf1 + cf2*(1-cf1)
	case cf1 < 0 && cf2 < 0:
		return cf1 + cf2*(1+cf1)
	default:
		denom := 1 - math.Min(math.Abs(cf1), math.Abs(cf2))
		if denom == 0 {
			if cf1+cf2 >= 0 {
				return 1.0
			}
			return -1.0
		}
		return (cf1 + cf2) / denom
	}
}

// CombineAll folds Combine over a list of certainty factors. An empty
// list yields 0.0 (no information).
func CombineAll(cfs []float64) float64 {
	combined := 0.0
	for _, cf := range cfs {
		combined = Combine(combined, cf)
	}
	return combined
}

// MinCertainty returns the weakest-link certainty of a conjunction of
// antecedents. An empty conjunction yields 0.0.
func MinCertainty(cfs []float64) float64 {
	if len(cfs) == 0 {
		return 0.0
	}
	lowest := cfs[0]
	for _, cf := range cfs[1:] {
		if cf < lowest {
			lowest = cf
		}
	}
	return lowest
}

// Interpret maps a certainty factor to its qualitative confidence band.
func Interpret(cf float64) string {
	switch {
	case cf >= 0.8:
		return "Sangat Meyakinkan"
	case cf >= 0.6:
		return "Meyakinkan"
	case cf >= 0.4:
		return "Cukup Meyakinkan"
	case cf >= 0.2:
		return "Kurang Meyakinkan"
	default:
		return "Tidak Meyakinkan"
	}
}
