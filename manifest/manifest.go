// Package manifest defines the configuration of an apportionment run: the
// assembly being seated, the size of its house, the census dataset to draw
// populations from and the pace at which the run plays back.
package manifest

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"time"

	"github.com/ipfs/go-datastore"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// DefaultPlaybackInterval is the delay between consecutive allocation steps
// when replaying a run.
const DefaultPlaybackInterval = 170 * time.Millisecond

type Version string

// Manifest identifies the specific configuration for
// the apportionment run currently playing.
type Manifest struct {
	// Assembly names the chamber whose seats are being allocated. The name
	// namespaces the run state kept in the datastore.
	Assembly string
	// HouseSize is the total number of seats in the assembly, counting the
	// guaranteed seat every entity starts with.
	HouseSize uint64
	// Steps fixes the number of allocation steps directly. If zero, the
	// step count is derived from HouseSize and the number of entities.
	Steps uint64
	// Dataset is the path of the census file populations are read from.
	Dataset string
	// PlaybackInterval is the time to wait between consecutive allocation
	// steps during playback. Zero or negative disables pacing.
	PlaybackInterval time.Duration
}

// DefaultManifest returns the configuration for apportioning the United
// States House of Representatives, the assembly the method of equal
// proportions was adopted for.
func DefaultManifest() Manifest {
	return Manifest{
		Assembly:         "us-house",
		HouseSize:        435,
		PlaybackInterval: DefaultPlaybackInterval,
	}
}

// Validate checks that the manifest describes a runnable apportionment.
// Such manifest must meet the following criteria:
// * It must name the assembly.
// * It must carry either a house size or an explicit step count.
func (m Manifest) Validate() error {
	switch {
	case m.Assembly == "":
		return xerrors.New("manifest with no assembly name")
	case m.HouseSize == 0 && m.Steps == 0:
		return xerrors.New("manifest with neither house size nor step count")
	default:
		return nil
	}
}

// StepsFor resolves the number of allocation steps for a run over the given
// number of entities. An explicit Steps value takes precedence; otherwise
// every entity is seated once and the remaining HouseSize seats are
// allocated one step at a time.
func (m Manifest) StepsFor(entityCount int) (uint64, error) {
	if m.Steps != 0 {
		return m.Steps, nil
	}
	if count := uint64(entityCount); entityCount > 0 && m.HouseSize >= count {
		return m.HouseSize - count, nil
	}
	return 0, xerrors.Errorf("house of %d cannot seat %d entities", m.HouseSize, entityCount)
}

// Version that uniquely identifies the manifest.
func (m Manifest) Version() (Version, error) {
	b, err := m.Marshal()
	if err != nil {
		return "", xerrors.Errorf("computing manifest version: %w", err)
	}
	sum := blake2b.Sum256(b)
	return Version(hex.EncodeToString(sum[:])), nil
}

// Marshal encodes the manifest as JSON, the format manifests are stored and
// exchanged in.
func (m Manifest) Marshal() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("marshaling JSON: %w", err)
	}
	return b, nil
}

func (m *Manifest) Unmarshal(r io.Reader) error {
	err := json.NewDecoder(r).Decode(&m)
	if err != nil {
		return xerrors.Errorf("decoding JSON: %w", err)
	}
	return nil
}

func (m Manifest) DatastorePrefix() datastore.Key {
	return datastore.NewKey("/apportion/" + m.Assembly)
}
