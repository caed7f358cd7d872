// Package apportion plays back the allocation of assembly seats by the
// Huntington–Hill method of equal proportions: every entity is seated once,
// then the remaining seats are awarded one step at a time to whichever
// entity holds the highest priority for the next seat.
package apportion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/k-donn/go-apportion/hh"
	"github.com/k-donn/go-apportion/internal/clock"
	"github.com/k-donn/go-apportion/internal/measurements"
	"github.com/k-donn/go-apportion/manifest"
	"github.com/k-donn/go-apportion/runstore"
	"github.com/k-donn/go-apportion/stats"

	"github.com/Kubuxu/go-broadcast"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"golang.org/x/xerrors"
)

// ErrRunComplete signals that every seat the manifest called for has been
// allocated.
var ErrRunComplete = errors.New("all seats have been allocated")

// Runner drives a single apportionment run from its manifest: it advances
// the underlying allocator, summarizes every step, persists snapshots when
// a datastore is configured and publishes them to subscribers.
type Runner struct {
	manifest manifest.Manifest

	busSnapshots broadcast.Channel[*hh.StepSnapshot]

	mu    sync.Mutex
	alloc *hh.Allocator
	rs    *runstore.Store
}

// New assembles a run of the given manifest over the given entities.
// The context is used for initialization, not runtime.
// The datastore may be nil, in which case snapshots are kept in memory only.
func New(ctx context.Context, m manifest.Manifest, entries []hh.Entry, ds datastore.Datastore) (*Runner, error) {
	if err := m.Validate(); err != nil {
		return nil, xerrors.Errorf("validating manifest: %w", err)
	}
	if len(entries) == 0 {
		return nil, xerrors.Errorf("seating %s: %w", m.Assembly, hh.ErrNoEntities)
	}

	table := hh.NewSeatTable()
	if err := table.Add(entries...); err != nil {
		return nil, xerrors.Errorf("registering entities: %w", err)
	}
	steps, err := m.StepsFor(table.Len())
	if err != nil {
		return nil, err
	}
	alloc, err := hh.NewAllocator(table, steps, hh.WithTracer(tracer))
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		manifest: m,
		alloc:    alloc,
	}
	if ds != nil {
		ds = measurements.NewMeteredDatastore(meter, "apportion_runstore_", ds)
		rs, err := runstore.New(ctx, namespace.Wrap(ds, m.DatastorePrefix()))
		if err != nil {
			return nil, xerrors.Errorf("opening run store: %w", err)
		}
		runner.rs = rs
	}
	metrics.runsStarted.Add(ctx, 1)
	return runner, nil
}

func (r *Runner) Manifest() manifest.Manifest {
	return r.manifest
}

// Advance performs one allocation step: the next seat is awarded, the
// resulting populations per seat are summarized, and the snapshot is
// persisted and published. Returns ErrRunComplete once every seat has been
// allocated.
func (r *Runner) Advance(ctx context.Context) (*hh.StepSnapshot, stats.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	snapshot, ok := r.alloc.Next()
	if !ok {
		return nil, stats.Summary{}, ErrRunComplete
	}
	summary, err := stats.Summarize(snapshot)
	if err != nil {
		return nil, stats.Summary{}, xerrors.Errorf("summarizing step %d: %w", snapshot.Step, err)
	}
	if r.rs != nil {
		if err := r.rs.Put(ctx, snapshot); err != nil {
			return nil, stats.Summary{}, xerrors.Errorf("storing snapshot for step %d: %w", snapshot.Step, err)
		}
	}
	r.busSnapshots.Publish(snapshot) // Publish within the lock to ensure ordering
	metrics.stepsAllocated.Add(ctx, 1)
	metrics.stepTime.Record(ctx, time.Since(start).Microseconds())
	return snapshot, summary, nil
}

// Run plays the remaining allocation steps, pacing them by the manifest's
// playback interval. It returns once every seat is allocated, or earlier if
// the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	clk := clock.GetClock(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _, err := r.Advance(ctx)
		switch {
		case errors.Is(err, ErrRunComplete):
			log.Infof("completed apportionment of %s", r.manifest.Assembly)
			return nil
		case err != nil:
			return err
		}
		if allocated, total := r.Progress(); allocated == total {
			// The run is done, skip the trailing pause.
			continue
		}
		if r.manifest.PlaybackInterval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(r.manifest.PlaybackInterval):
		}
	}
}

// Latest returns the most recent snapshot of this run, or nil if no step has
// been taken yet.
func (r *Runner) Latest() *hh.StepSnapshot {
	return r.busSnapshots.Last()
}

// Get returns the snapshot for the given step from the run store.
func (r *Runner) Get(ctx context.Context, step uint64) (*hh.StepSnapshot, error) {
	r.mu.Lock()
	rs := r.rs
	r.mu.Unlock()

	if rs == nil {
		return nil, xerrors.Errorf("run has no datastore")
	}
	return rs.Get(ctx, step)
}

// SubscribeForNewSnapshots is used to subscribe to the snapshot broadcast
// channel. When a new snapshot is produced it is published on the given
// channel.
//
// If the passed channel is full at any point, it will be dropped from
// subscription and closed. To stop subscribing, either the closer function
// can be used or the channel can be abandoned. Passing a channel multiple
// times to the Subscribe function will result in a panic.
func (r *Runner) SubscribeForNewSnapshots(ch chan<- *hh.StepSnapshot) (last *hh.StepSnapshot, closer func()) {
	return r.busSnapshots.Subscribe(ch)
}

// Progress reports the number of allocation steps taken so far and the total
// number of steps in the run.
func (r *Runner) Progress() (allocated, total uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alloc.Allocated(), r.alloc.Steps()
}
