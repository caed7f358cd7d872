package hh

import "math"

// PriorityValue computes an entity's claim on its next seat, weighted by the
// entity's population. A higher priority value indicates a stronger claim.
// The value is the population divided by the geometric mean of the current
// seat count and the seat count one higher:
//
//	population / sqrt(seats * (seats + 1))
//
// The divisor grows with every seat an entity holds, so a claim weakens as
// seats accumulate while larger populations are penalised more slowly. This
// is what makes repeatedly awarding the highest-priority entity converge on
// a proportional distribution.
//
// A seat count of zero yields an infinite priority, the limit of the divisor
// approaching zero. It cannot arise from a valid SeatTable, which starts
// every entity at one seat.
func PriorityValue(population int64, seats uint64) float64 {
	if seats == 0 {
		return math.Inf(1)
	}
	return float64(population) / math.Sqrt(float64(seats)*float64(seats+1))
}

// MaxPriorityIndex returns the index of the highest value in the given
// priorities, or -1 if there are none. A later value displaces an earlier
// one only when strictly greater, so ties resolve to the lowest index. This
// keeps selection deterministic for any fixed entity order.
func MaxPriorityIndex(priorities []float64) int {
	if len(priorities) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(priorities); i++ {
		if priorities[i] > priorities[best] {
			best = i
		}
	}
	return best
}
