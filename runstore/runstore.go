// Package runstore persists the step snapshots of an apportionment run and
// relays them to subscribers as they are produced.
package runstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/k-donn/go-apportion/hh"
	"github.com/k-donn/go-apportion/internal/encoding"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/ipfs/go-datastore/query"

	"github.com/Kubuxu/go-broadcast"
	"golang.org/x/xerrors"
)

var ErrSnapshotNotFound = errors.New("step snapshot not found")

// Store is responsible for storing and relaying information about new step
// snapshots. Snapshots are dense: the store refuses writes that would leave
// a gap in the step sequence.
type Store struct {
	writeLk      sync.Mutex
	ds           datastore.Datastore
	codec        encoding.EncodeDecoder[*hh.StepSnapshot]
	busSnapshots broadcast.Channel[*hh.StepSnapshot]
}

// New creates a runstore.
// The passed Datastore has to be thread safe.
func New(ctx context.Context, ds datastore.Datastore) (*Store, error) {
	codec, err := encoding.NewZSTD[*hh.StepSnapshot]()
	if err != nil {
		return nil, xerrors.Errorf("creating snapshot codec: %w", err)
	}
	rs := &Store{
		ds:    namespace.Wrap(ds, datastore.NewKey("/runstore")),
		codec: codec,
	}
	latest, err := rs.loadLatest(ctx)
	if err != nil {
		return nil, xerrors.Errorf("loading latest step snapshot: %w", err)
	}
	if latest != nil {
		rs.busSnapshots.Publish(latest)
	}

	return rs, nil
}

func (rs *Store) loadLatest(ctx context.Context) (*hh.StepSnapshot, error) {
	// This will optimize well on badger and leveldb.
	res, err := rs.ds.Query(ctx, query.Query{
		Prefix: "/steps",
		Orders: []query.Order{query.OrderByKeyDescending{}},
		Limit:  1,
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to query for the latest step snapshot: %w", err)
	}
	defer res.Close()
	val, ok := res.NextSync()
	if !ok {
		return nil, nil
	}
	var s hh.StepSnapshot
	if err := rs.codec.Decode(val.Value, &s); err != nil {
		return nil, xerrors.Errorf("unmarshalling latest step snapshot: %w", err)
	}
	return &s, nil
}

// Latest returns the newest available step snapshot.
func (rs *Store) Latest() *hh.StepSnapshot {
	return rs.busSnapshots.Last()
}

// Get returns the snapshot of the given step, if present in the store.
// A missing step yields a wrapped ErrSnapshotNotFound.
func (rs *Store) Get(ctx context.Context, step uint64) (*hh.StepSnapshot, error) {
	b, err := rs.ds.Get(ctx, rs.keyForStep(step))

	if errors.Is(err, datastore.ErrNotFound) {
		return nil, xerrors.Errorf("step %d: %w", step, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, xerrors.Errorf("accessing snapshot in datastore: %w", err)
	}

	var s hh.StepSnapshot
	if err := rs.codec.Decode(b, &s); err != nil {
		return nil, xerrors.Errorf("unmarshalling snapshot: %w", err)
	}
	return &s, nil
}

// GetRange returns a range of snapshots from start to end inclusive by step
// index in the increasing order. Only this order of traversal is supported.
// If it encounters a missing step, it returns a wrapped ErrSnapshotNotFound
// and the available snapshots.
func (rs *Store) GetRange(ctx context.Context, start uint64, end uint64) ([]hh.StepSnapshot, error) {
	if start > end {
		return nil, xerrors.Errorf("start is larger than end: %d > %d", start, end)
	}
	if end-start > uint64(math.MaxInt)-1 {
		return nil, xerrors.Errorf("range %d to %d is too large", start, end)
	}

	bSnapshots := make([][]byte, 0, end-start+1)

	for i := start; i <= end; i++ {
		b, err := rs.ds.Get(ctx, rs.keyForStep(i))
		if errors.Is(err, datastore.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, xerrors.Errorf("accessing snapshot at %d for range request: %w", i, err)
		}

		bSnapshots = append(bSnapshots, b)
	}

	snapshots := make([]hh.StepSnapshot, len(bSnapshots))
	for j, b := range bSnapshots {
		if err := rs.codec.Decode(b, &snapshots[j]); err != nil {
			return nil, xerrors.Errorf("unmarshalling a snapshot at j=%d, step %d: %w", j, start+uint64(j), err)
		}
	}

	if len(snapshots) < cap(bSnapshots) {
		return snapshots, xerrors.Errorf("step %d: %w", start+uint64(len(bSnapshots)), ErrSnapshotNotFound)
	}
	return snapshots, nil
}

func (_ *Store) keyForStep(i uint64) datastore.Key {
	return datastore.NewKey(fmt.Sprintf("/steps/%016X", i))
}

// Put saves a step snapshot in the store and notifies listeners.
// Storing an already present step is a no-op. It errors if adding the
// snapshot would create a gap in the step sequence.
func (rs *Store) Put(ctx context.Context, snapshot *hh.StepSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return xerrors.Errorf("validating snapshot: %w", err)
	}
	key := rs.keyForStep(snapshot.Step)

	exists, err := rs.ds.Has(ctx, key)
	if err != nil {
		return xerrors.Errorf("checking existence of snapshot: %w", err)
	}
	if exists {
		return nil
	}

	b, err := rs.codec.Encode(snapshot)
	if err != nil {
		return xerrors.Errorf("encoding snapshot at step %d: %w", snapshot.Step, err)
	}

	rs.writeLk.Lock()
	defer rs.writeLk.Unlock()

	if latest := rs.Latest(); latest != nil && snapshot.Step > latest.Step &&
		snapshot.Step != latest.Step+1 {
		return xerrors.Errorf("attempted to add snapshot at step %d but the previous one is %d",
			snapshot.Step, latest.Step)
	}

	if err := rs.ds.Put(ctx, key, b); err != nil {
		return xerrors.Errorf("putting the snapshot: %w", err)
	}
	rs.busSnapshots.Publish(snapshot) // Publish within the lock to ensure ordering

	return nil
}

// SubscribeForNewSnapshots is used to subscribe to the broadcast channel.
// If the passed channel is full at any point, it will be dropped from
// subscription and closed.
// To stop subscribing, either the closer function can be used or the channel
// can be abandoned.
// Passing a channel multiple times to the Subscribe function will result in
// a panic.
// The channel will receive new snapshots sequentially.
func (rs *Store) SubscribeForNewSnapshots(ch chan<- *hh.StepSnapshot) (last *hh.StepSnapshot, closer func()) {
	return rs.busSnapshots.Subscribe(ch)
}
