// Package sink appends observations to the durable CSV log.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/afero"

	"watchertracker/internal/coordinator"
)

// timeFormat is the timestamp column format (UTC wall clock).
const timeFormat = "2006-01-02 15:04:05"

var header = []string{"date", "symbol", "watchers"}

// CSV is an append-only long-format sink: one row per observation.
// It never truncates, reorders, or deduplicates existing rows; every run is a
// distinct measurement, so appending the same batch twice records it twice.
type CSV struct {
	fs   afero.Fs
	path string
}

// NewCSV creates a CSV sink writing to path on the given filesystem.
func NewCSV(fs afero.Fs, path string) *CSV {
	return &CSV{fs: fs, path: path}
}

// Ensure creates the log file with its header row if it does not exist yet.
func (s *CSV) Ensure() error {
	if _, err := s.fs.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat csv file: %w", err)
	}

	f, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Append writes the observations as rows at the end of the log, in order.
func (s *CSV) Append(observations []coordinator.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	f, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, obs := range observations {
		row := []string{
			obs.Timestamp.UTC().Format(timeFormat),
			obs.Symbol,
			strconv.Itoa(obs.Count),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("append csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
