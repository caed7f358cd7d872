// Package stats computes the spread statistics of a seat distribution,
// summarizing how evenly populated the seats of an assembly are after an
// allocation step.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/k-donn/go-apportion/hh"
)

var (
	// ErrEmptySnapshot signals a snapshot with no entities to summarize.
	ErrEmptySnapshot = errors.New("snapshot has no entities")
	// ErrNonPositiveValue signals a population per seat outside the domain
	// of the geometric mean.
	ErrNonPositiveValue = errors.New("non-positive population per seat")
)

// Summary holds the spread measures of entity populations per seat at a
// single allocation step, along with the name of the entity first in line
// for the seat that follows.
type Summary struct {
	// Mean is the arithmetic mean of population per seat.
	Mean float64
	// StdDev is the population standard deviation of population per seat,
	// dividing by the number of entities rather than one less.
	StdDev float64
	// Range is the difference between the largest and smallest population
	// per seat.
	Range float64
	// GeometricMean is the n-th root of the product of populations per
	// seat, evaluated in the log domain so that large assemblies cannot
	// overflow the product.
	GeometricMean float64
	// MaxPriorityName is the name of the entity holding the highest
	// priority in the snapshot. Snapshots capture post-step priorities, so
	// this is the entity in line for the next seat.
	MaxPriorityName string
}

// Summarize computes the Summary of the given snapshot. The snapshot is
// never mutated and equal snapshots produce equal summaries.
func Summarize(snapshot *hh.StepSnapshot) (Summary, error) {
	if snapshot == nil || len(snapshot.Entities) == 0 {
		return Summary{}, ErrEmptySnapshot
	}

	n := float64(len(snapshot.Entities))
	var sum, logSum float64
	min, max := math.Inf(1), math.Inf(-1)
	priorities := make([]float64, len(snapshot.Entities))
	for i := range snapshot.Entities {
		e := &snapshot.Entities[i]
		v := e.PopulationPerSeat
		if v <= 0 {
			return Summary{}, fmt.Errorf("entity %d (%s): %w", i, e.Name, ErrNonPositiveValue)
		}
		sum += v
		logSum += math.Log(v)
		min = math.Min(min, v)
		max = math.Max(max, v)
		priorities[i] = e.Priority
	}
	mean := sum / n

	var squares float64
	for i := range snapshot.Entities {
		d := snapshot.Entities[i].PopulationPerSeat - mean
		squares += d * d
	}

	return Summary{
		Mean:            mean,
		StdDev:          math.Sqrt(squares / n),
		Range:           max - min,
		GeometricMean:   math.Exp(logSum / n),
		MaxPriorityName: snapshot.Entities[hh.MaxPriorityIndex(priorities)].Name,
	}, nil
}
