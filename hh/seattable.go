package hh

import (
	"errors"
	"fmt"
	"slices"
)

// SeatTable tracks the seats held by each entity over the course of an
// apportionment. Entities keep the order they were added in and are
// identified by their index; names are display labels and need not be
// unique. Entries and Seats are parallel slices.
type SeatTable struct {
	Entries []Entry
	Seats   []uint64
	// TotalPopulation is the aggregate population of all entries.
	TotalPopulation int64
	// TotalSeats is the aggregate of Seats. It starts at one seat per entity
	// and only ever grows; see IncrementSeats.
	TotalSeats uint64
}

// NewSeatTable creates an empty SeatTable.
func NewSeatTable() *SeatTable {
	return &SeatTable{}
}

// Add inserts one or more entries to this SeatTable, each starting out with
// the single guaranteed seat. Each inserted entry must have a population
// larger than zero. Entries are never keyed by name, so repeated or empty
// names are accepted.
func (t *SeatTable) Add(entries ...Entry) error {
	for _, entry := range entries {
		if entry.Population <= 0 {
			return fmt.Errorf("entity %d (%s) with population %d: %w", len(t.Entries), entry.Name, entry.Population, ErrNonPositivePopulation)
		}
		t.TotalPopulation += entry.Population
		t.TotalSeats++
		t.Entries = append(t.Entries, entry)
		t.Seats = append(t.Seats, 1)
	}
	return nil
}

// Get retrieves the entry and its current seat count at the given index.
func (t *SeatTable) Get(index int) (Entry, uint64, error) {
	if index < 0 || index >= len(t.Entries) {
		return Entry{}, 0, fmt.Errorf("index %d with %d entities: %w", index, len(t.Entries), ErrIndexOutOfRange)
	}
	return t.Entries[index], t.Seats[index], nil
}

// IncrementSeats awards one further seat to the entity at the given index.
func (t *SeatTable) IncrementSeats(index int) error {
	if index < 0 || index >= len(t.Seats) {
		return fmt.Errorf("index %d with %d entities: %w", index, len(t.Seats), ErrIndexOutOfRange)
	}
	t.Seats[index]++
	t.TotalSeats++
	return nil
}

// Copy creates a deep copy of this SeatTable.
func (t *SeatTable) Copy() *SeatTable {
	replica := NewSeatTable()
	replica.Entries = slices.Clone(t.Entries)
	replica.Seats = slices.Clone(t.Seats)
	replica.TotalPopulation = t.TotalPopulation
	replica.TotalSeats = t.TotalSeats
	return replica
}

// Len returns the number of entries in this SeatTable.
func (t *SeatTable) Len() int {
	return len(t.Entries)
}

// Validate checks the validity of this SeatTable.
// Such table must meet the following criteria:
// * Entries and Seats must be consistent in size.
// * All entries must have a population larger than zero.
// * All entries must hold at least the one guaranteed seat.
// * TotalPopulation must correspond to the aggregate population of entries.
// * TotalSeats must correspond to the aggregate of held seats.
func (t *SeatTable) Validate() error {
	if len(t.Entries) != len(t.Seats) {
		return errors.New("inconsistent entries and seats")
	}
	var totalPopulation int64
	var totalSeats uint64
	for index, entry := range t.Entries {
		if entry.Population <= 0 {
			return fmt.Errorf("non-positive population for entity %d (%s)", index, entry.Name)
		}
		if t.Seats[index] == 0 {
			return fmt.Errorf("no seats held by entity %d (%s)", index, entry.Name)
		}
		totalPopulation += entry.Population
		totalSeats += t.Seats[index]
	}
	if totalPopulation != t.TotalPopulation {
		return errors.New("total population does not match entries")
	}
	if totalSeats != t.TotalSeats {
		return errors.New("total seats do not match entries")
	}
	return nil
}
