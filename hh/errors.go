package hh

import "errors"

var (
	// ErrNoEntities signals that an operation which requires at least one
	// entity was attempted on an empty table.
	ErrNoEntities = errors.New("no entities")
	// ErrNonPositivePopulation signals an entity whose population is zero or
	// negative. Every entity must have a population larger than zero.
	ErrNonPositivePopulation = errors.New("non-positive population")
	// ErrIndexOutOfRange signals an entity index outside the bounds of the
	// table it was used against.
	ErrIndexOutOfRange = errors.New("entity index out of range")
)
