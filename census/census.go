// Package census reads entity populations from two-column CSV files of the
// kind published alongside decennial census results, where each row carries
// an entity name followed by its population.
package census

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/k-donn/go-apportion/hh"
)

// ReadEntries parses census rows from r into entries usable by a seat table.
// Populations may use comma digit grouping, e.g. "39,538,223". A first row
// whose population column does not parse is taken to be a header and
// skipped.
func ReadEntries(r io.Reader) ([]hh.Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var entries []hh.Entry
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		population, err := parsePopulation(record[1])
		if err != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("row %d: parsing population %q: %w", row, record[1], err)
		}
		entries = append(entries, hh.Entry{Name: record[0], Population: population})
	}
}

// LoadEntries reads entries from the census file at path.
func LoadEntries(path string) ([]hh.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s to load entities: %w", path, err)
	}
	defer f.Close()
	return ReadEntries(f)
}

func parsePopulation(field string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(field), ",", ""), 10, 64)
}
