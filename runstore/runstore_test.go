package runstore

import (
	"context"
	"math"
	"testing"

	"github.com/k-donn/go-apportion/hh"
	datastore "github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/require"
)

func makeSnapshot(step uint64) *hh.StepSnapshot {
	return &hh.StepSnapshot{
		Step:     step,
		Selected: 0,
		Entities: []hh.EntityState{
			{Name: "Iowa", Population: 3_190_369, Seats: step + 2, Priority: 1_040_549.3, PopulationPerSeat: 1_595_184.5},
			{Name: "Kansas", Population: 2_937_880, Seats: 1, Priority: 2_077_404.3, PopulationPerSeat: 2_937_880},
		},
	}
}

func TestNewRunStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	_, err := New(ctx, ds)
	require.NoError(t, err)
}

func TestLatest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	latest := rs.Latest()
	require.Nil(t, latest)
}

func TestPut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	snapshot := makeSnapshot(0)
	err = rs.Put(ctx, snapshot)
	require.NoError(t, err)

	latest := rs.Latest()
	require.NotNil(t, latest)
	require.Equal(t, uint64(0), latest.Step)

	// Duplicate put is a no-op.
	err = rs.Put(ctx, snapshot)
	require.NoError(t, err)

	// A gap in the sequence is refused.
	snapshot = makeSnapshot(2)
	err = rs.Put(ctx, snapshot)
	require.Error(t, err)

	snapshot = makeSnapshot(1)
	err = rs.Put(ctx, snapshot)
	require.NoError(t, err)
}

func TestPutInvalidSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	err = rs.Put(ctx, nil)
	require.ErrorContains(t, err, "validating snapshot")

	err = rs.Put(ctx, &hh.StepSnapshot{Step: 0})
	require.ErrorIs(t, err, hh.ErrNoEntities)

	require.Nil(t, rs.Latest())
}

func TestGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	_, err = rs.Get(ctx, 0)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSnapshotNotFound)

	snapshot := makeSnapshot(0)
	err = rs.Put(ctx, snapshot)
	require.NoError(t, err)

	fetched, err := rs.Get(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, snapshot, fetched)
}

func TestGetRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	_, err = rs.GetRange(ctx, 0, 4)
	require.Error(t, err)

	for i := uint64(0); i <= 4; i++ {
		err := rs.Put(ctx, makeSnapshot(i))
		require.NoError(t, err)
	}

	snapshots, err := rs.GetRange(ctx, 0, 4)
	require.NoError(t, err)
	require.Len(t, snapshots, 5)

	// Can get one snapshot
	snapshots, err = rs.GetRange(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, uint64(1), snapshots[0].Step)

	// A truncated range returns what exists along the error.
	snapshots, err = rs.GetRange(ctx, 3, 9)
	require.ErrorIs(t, err, ErrSnapshotNotFound)
	require.Len(t, snapshots, 2)

	// Start cannot be after end.
	_, err = rs.GetRange(ctx, 1, 0)
	require.ErrorContains(t, err, "start is larger than end")

	// Make sure we don't have any overflow issues.
	_, err = rs.GetRange(ctx, 0, math.MaxInt)
	require.ErrorContains(t, err, "is too large")
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	ch := make(chan *hh.StepSnapshot, 3)
	last, closer := rs.SubscribeForNewSnapshots(ch)
	defer closer()
	require.Nil(t, last)

	snapshot := makeSnapshot(0)
	err = rs.Put(ctx, snapshot)
	require.NoError(t, err)

	select {
	case received, ok := <-ch:
		require.True(t, ok, "channel should not close")
		require.Equal(t, snapshot, received)
	default:
		t.FailNow()
	}
}

func TestLatestAfterPut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	err = rs.Put(ctx, makeSnapshot(0))
	require.NoError(t, err)

	latest := rs.Latest()
	require.NotNil(t, latest)
	require.Equal(t, uint64(0), latest.Step)

	err = rs.Put(ctx, makeSnapshot(1))
	require.NoError(t, err)

	latest = rs.Latest()
	require.NotNil(t, latest)
	require.Equal(t, uint64(1), latest.Step)
}

func TestPutSequential(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs, err := New(ctx, ds)
	require.NoError(t, err)

	for i := uint64(0); i <= 4; i++ {
		err := rs.Put(ctx, makeSnapshot(i))
		require.NoError(t, err)
	}

	err = rs.Put(ctx, makeSnapshot(6))
	require.Error(t, err)
}

func TestPersistency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	rs1, err := New(ctx, ds)
	require.NoError(t, err)

	for i := uint64(0); i <= 4; i++ {
		err := rs1.Put(ctx, makeSnapshot(i))
		require.NoError(t, err)
	}

	rs2, err := New(ctx, ds)
	require.NoError(t, err)

	for i := uint64(0); i <= 4; i++ {
		snapshot, err := rs2.Get(ctx, i)
		require.NoError(t, err)
		require.Equal(t, i, snapshot.Step)
	}

	// The reopened store resumes from the stored latest, so appends keep
	// working across restarts.
	require.Equal(t, rs1.Latest().Step, rs2.Latest().Step)
	require.NoError(t, rs2.Put(ctx, makeSnapshot(5)))
	require.Error(t, rs2.Put(ctx, makeSnapshot(7)))
}
