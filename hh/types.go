// Package hh implements the Huntington–Hill method of equal proportions,
// which apportions the seats of a fixed-size assembly among a set of
// entities in proportion to their populations.
package hh

import (
	"errors"
	"fmt"
)

// Entry represents a single entity competing for seats, including its name
// and census population.
type Entry struct {
	Name       string
	Population int64
}

// EntityState captures the standing of one entity within a StepSnapshot.
type EntityState struct {
	Name       string
	Population int64
	// Seats held once the snapshot's allocation is applied.
	Seats uint64
	// Priority is the entity's claim on the next seat, computed from Seats.
	Priority float64
	// PopulationPerSeat is Population divided by Seats.
	PopulationPerSeat float64
}

// StepSnapshot records the outcome of a single allocation step: the entity
// that won the seat and the resulting standing of every entity. Seat counts,
// priorities and populations per seat are captured with the awarded seat
// applied, so each snapshot carries the exact input to the step that
// follows it.
type StepSnapshot struct {
	// Step is the zero-based index of the allocation step.
	Step uint64
	// Selected is the index of the entity that received the seat.
	Selected int
	// Entities is the post-step standing of every entity, in table order.
	Entities []EntityState
}

// Validate checks that this snapshot is well formed.
// Such snapshot must meet the following criteria:
// * It must hold at least one entity.
// * Selected must be an index within Entities.
// * All entities must have a population larger than zero.
// * All entities must hold at least the one guaranteed seat.
func (s *StepSnapshot) Validate() error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	if len(s.Entities) == 0 {
		return ErrNoEntities
	}
	if s.Selected < 0 || s.Selected >= len(s.Entities) {
		return fmt.Errorf("selected index %d with %d entities: %w", s.Selected, len(s.Entities), ErrIndexOutOfRange)
	}
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.Population <= 0 {
			return fmt.Errorf("entity %d (%s): %w", i, e.Name, ErrNonPositivePopulation)
		}
		if e.Seats == 0 {
			return fmt.Errorf("entity %d (%s) holds no seats", i, e.Name)
		}
	}
	return nil
}

// Tracer collects trace logs that capture seat selections as they happen.
// The primary purpose of Tracer is to aid debugging.
type Tracer interface {
	Log(format string, args ...any)
}
