package hh_test

import (
	"testing"

	"github.com/k-donn/go-apportion/hh"
	"github.com/stretchr/testify/require"
)

func TestSeatTable(t *testing.T) {

	var (
		oneValidEntry        = hh.Entry{Name: "Delaware", Population: 989_948}
		anotherValidEntry    = hh.Entry{Name: "Montana", Population: 1_084_225}
		yetAnotherValidEntry = hh.Entry{Name: "Vermont", Population: 643_077}
		zeroPopulationEntry  = hh.Entry{Name: "Atlantis", Population: 0}
		unnamedEntry         = hh.Entry{Population: 1_614_000}
	)

	t.Run("empty table", func(t *testing.T) {
		t.Run("is valid", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Validate())
		})
		t.Run("get is error", func(t *testing.T) {
			subject := hh.NewSeatTable()
			_, _, err := subject.Get(0)
			require.ErrorIs(t, err, hh.ErrIndexOutOfRange)
		})
	})
	t.Run("on Add", func(t *testing.T) {
		t.Run("valid entry is added with one seat", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Add(oneValidEntry))
			require.NoError(t, subject.Validate())
			requireAddedToSeatTable(t, subject, 0, oneValidEntry)
			require.Equal(t, uint64(1), subject.TotalSeats)
		})
		t.Run("entries keep input order", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Add(oneValidEntry, anotherValidEntry))
			require.NoError(t, subject.Add(yetAnotherValidEntry))
			require.NoError(t, subject.Validate())
			requireAddedToSeatTable(t, subject, 0, oneValidEntry)
			requireAddedToSeatTable(t, subject, 1, anotherValidEntry)
			requireAddedToSeatTable(t, subject, 2, yetAnotherValidEntry)
			require.Equal(t, uint64(3), subject.TotalSeats)
		})
		t.Run("repeated names are accepted", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Add(oneValidEntry, oneValidEntry))
			require.NoError(t, subject.Validate())
			requireAddedToSeatTable(t, subject, 0, oneValidEntry)
			requireAddedToSeatTable(t, subject, 1, oneValidEntry)
			require.Equal(t, 2, subject.Len())
			require.Equal(t, 2*oneValidEntry.Population, subject.TotalPopulation)
			require.Equal(t, uint64(2), subject.TotalSeats)
		})
		t.Run("unnamed entry is accepted", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Add(unnamedEntry))
			require.NoError(t, subject.Validate())
			requireAddedToSeatTable(t, subject, 0, unnamedEntry)
		})
		t.Run("zero population entry is error", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.ErrorIs(t, subject.Add(zeroPopulationEntry), hh.ErrNonPositivePopulation)
		})
		t.Run("negative population entry is error", func(t *testing.T) {
			subject := hh.NewSeatTable()
			negative := hh.Entry{Name: "Lemuria", Population: -1}
			require.ErrorIs(t, subject.Add(negative), hh.ErrNonPositivePopulation)
		})
	})
	t.Run("on IncrementSeats", func(t *testing.T) {
		t.Run("seat is awarded", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Add(oneValidEntry, anotherValidEntry))
			require.NoError(t, subject.IncrementSeats(1))
			require.NoError(t, subject.Validate())

			_, gotSeats, err := subject.Get(1)
			require.NoError(t, err)
			require.Equal(t, uint64(2), gotSeats)
			require.Equal(t, uint64(3), subject.TotalSeats)

			_, gotSeats, err = subject.Get(0)
			require.NoError(t, err)
			require.Equal(t, uint64(1), gotSeats)
		})
		t.Run("negative index is error", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Add(oneValidEntry))
			require.ErrorIs(t, subject.IncrementSeats(-1), hh.ErrIndexOutOfRange)
		})
		t.Run("index beyond entries is error", func(t *testing.T) {
			subject := hh.NewSeatTable()
			require.NoError(t, subject.Add(oneValidEntry))
			require.ErrorIs(t, subject.IncrementSeats(1), hh.ErrIndexOutOfRange)
		})
	})
	t.Run("on Validate", func(t *testing.T) {
		tests := []struct {
			name    string
			subject func() *hh.SeatTable
			wantErr string
		}{
			{
				name: "repeated names are valid",
				subject: func() *hh.SeatTable {
					subject := hh.NewSeatTable()
					require.NoError(t, subject.Add(oneValidEntry, oneValidEntry, oneValidEntry))
					return subject
				},
			},
			{
				name: "missing seats is error",
				subject: func() *hh.SeatTable {
					subject := hh.NewSeatTable()
					subject.Entries = append(subject.Entries, oneValidEntry)
					return subject
				},
				wantErr: "inconsistent entries and seats",
			},
			{
				name: "zero population entry is error",
				subject: func() *hh.SeatTable {
					subject := hh.NewSeatTable()
					subject.Entries = append(subject.Entries, zeroPopulationEntry)
					subject.Seats = append(subject.Seats, 1)
					subject.TotalSeats = 1
					return subject
				},
				wantErr: "non-positive population",
			},
			{
				name: "seatless entry is error",
				subject: func() *hh.SeatTable {
					subject := hh.NewSeatTable()
					require.NoError(t, subject.Add(oneValidEntry))
					subject.Seats[0] = 0
					return subject
				},
				wantErr: "no seats held",
			},
			{
				name: "incorrect total population is error",
				subject: func() *hh.SeatTable {
					subject := hh.NewSeatTable()
					require.NoError(t, subject.Add(oneValidEntry, anotherValidEntry))
					subject.TotalPopulation--
					return subject
				},
				wantErr: "total population does not match",
			},
			{
				name: "incorrect total seats is error",
				subject: func() *hh.SeatTable {
					subject := hh.NewSeatTable()
					require.NoError(t, subject.Add(oneValidEntry, anotherValidEntry))
					subject.TotalSeats++
					return subject
				},
				wantErr: "total seats do not match",
			},
		}
		for _, test := range tests {
			test := test
			t.Run(test.name, func(t *testing.T) {
				subject := test.subject()
				gotErr := subject.Validate()
				if test.wantErr != "" {
					require.ErrorContains(t, gotErr, test.wantErr)
				} else {
					require.NoError(t, gotErr)
				}
			})
		}
	})
	t.Run("on Copy", func(t *testing.T) {
		tests := []struct {
			name    string
			subject func() *hh.SeatTable
		}{
			{
				name: "empty table is copied",
				subject: func() *hh.SeatTable {
					return hh.NewSeatTable()
				},
			},
			{
				name: "non-empty is copied",
				subject: func() *hh.SeatTable {
					subject := hh.NewSeatTable()
					require.NoError(t, subject.Add(oneValidEntry, anotherValidEntry, yetAnotherValidEntry))
					require.NoError(t, subject.IncrementSeats(2))
					return subject
				},
			},
		}
		for _, test := range tests {
			test := test
			t.Run(test.name, func(t *testing.T) {
				subject := test.subject()
				gotCopy := subject.Copy()
				require.Equal(t, subject, gotCopy)
				require.NotSame(t, subject, gotCopy)

				if gotCopy.Len() > 0 {
					// Mutating the copy must leave the original untouched.
					require.NoError(t, gotCopy.IncrementSeats(0))
					require.Equal(t, uint64(1), subject.Seats[0])
				}
			})
		}
	})
}

func requireAddedToSeatTable(t *testing.T, subject *hh.SeatTable, index int, entry hh.Entry) {
	t.Helper()
	gotEntry, gotSeats, err := subject.Get(index)
	require.NoError(t, err)
	require.Equal(t, entry, gotEntry)
	require.Equal(t, uint64(1), gotSeats)
}
