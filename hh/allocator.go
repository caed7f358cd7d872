package hh

import "fmt"

// Allocator hands out the seats of an assembly one at a time, producing a
// StepSnapshot for each seat until the configured number of steps is
// exhausted. Snapshots are computed on demand; an Allocator holding many
// pending steps costs no more than one holding a single step.
//
// An Allocator owns its SeatTable for the duration of the run. Callers must
// not mutate the table between steps; use SeatTable.Copy to keep an
// independent view.
type Allocator struct {
	table  *SeatTable
	steps  uint64
	next   uint64
	tracer Tracer
}

// NewAllocator creates an Allocator that awards steps further seats to the
// entities of the given table. The table must be valid and hold at least
// one entity.
func NewAllocator(table *SeatTable, steps uint64, o ...Option) (*Allocator, error) {
	opts, err := newOptions(o...)
	if err != nil {
		return nil, err
	}
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("allocating %d seats: %w", steps, ErrNoEntities)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validating seat table: %w", err)
	}
	return &Allocator{
		table:  table,
		steps:  steps,
		tracer: opts.tracer,
	}, nil
}

// Next runs a single allocation step and returns its snapshot, or false once
// every step has been produced. Repeated calls after exhaustion keep
// returning false without mutating the table.
//
// Each step computes every entity's priority from its current seat count,
// awards one seat to the entity with the highest priority and captures the
// standing of all entities with the new seat applied. Ties on priority
// resolve to the lowest entity index; see MaxPriorityIndex.
func (a *Allocator) Next() (*StepSnapshot, bool) {
	if a.next >= a.steps {
		return nil, false
	}
	step := a.next
	a.next++

	priorities := make([]float64, a.table.Len())
	for i := range priorities {
		priorities[i] = PriorityValue(a.table.Entries[i].Population, a.table.Seats[i])
	}
	selected := MaxPriorityIndex(priorities)
	if err := a.table.IncrementSeats(selected); err != nil {
		// The selection scans the very table it mutates, this operation can't fail.
		panic(err)
	}

	entities := make([]EntityState, a.table.Len())
	for i := range entities {
		entry := a.table.Entries[i]
		seats := a.table.Seats[i]
		entities[i] = EntityState{
			Name:              entry.Name,
			Population:        entry.Population,
			Seats:             seats,
			Priority:          PriorityValue(entry.Population, seats),
			PopulationPerSeat: float64(entry.Population) / float64(seats),
		}
	}
	if a.tracer != nil {
		a.tracer.Log("step %d: seat %d to %s", step, entities[selected].Seats, entities[selected].Name)
	}
	return &StepSnapshot{
		Step:     step,
		Selected: selected,
		Entities: entities,
	}, true
}

// All drains and returns the remaining snapshots of the sequence.
func (a *Allocator) All() []*StepSnapshot {
	out := make([]*StepSnapshot, 0, a.steps-a.next)
	for {
		snapshot, ok := a.Next()
		if !ok {
			return out
		}
		out = append(out, snapshot)
	}
}

// Allocated returns the number of steps produced so far.
func (a *Allocator) Allocated() uint64 {
	return a.next
}

// Steps returns the total number of steps this allocator produces.
func (a *Allocator) Steps() uint64 {
	return a.steps
}
