package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/murmur/config"
)

// csvTable appends records of one type to a CSV file, writing the header
// with the first record.
type csvTable[T any] struct {
	f             *os.File
	headerWritten bool
}

func (t *csvTable[T]) write(rec T) error {
	records := []T{rec}
	if !t.headerWritten {
		t.headerWritten = true
		return gocsv.Marshal(records, t.f)
	}
	return gocsv.MarshalWithoutHeaders(records, t.f)
}

// OutputManager writes run output as CSV files in a directory.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir      string
	cycles   csvTable[CycleStats]
	progress csvTable[ProgressSample]
	perf     csvTable[PerfStatsCSV]
}

// NewOutputManager creates dir and opens cycles.csv, progress.csv and
// perf.csv inside it. Returns nil if dir is empty.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **os.File
	}{
		{"cycles.csv", &om.cycles.f},
		{"progress.csv", &om.progress.f},
		{"perf.csv", &om.perf.f},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		*file.dst = f
	}
	return om, nil
}

// WriteConfig saves the effective configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteCycle appends a row to cycles.csv.
func (om *OutputManager) WriteCycle(s CycleStats) error {
	if om == nil {
		return nil
	}
	if err := om.cycles.write(s); err != nil {
		return fmt.Errorf("writing cycle stats: %w", err)
	}
	return nil
}

// WriteProgress appends a row to progress.csv.
func (om *OutputManager) WriteProgress(p ProgressSample) error {
	if om == nil {
		return nil
	}
	if err := om.progress.write(p); err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	return nil
}

// WritePerf appends a row to perf.csv.
func (om *OutputManager) WritePerf(s PerfStats, cycle int, tick int32) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write(s.ToCSV(cycle, tick)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, f := range []*os.File{om.cycles.f, om.progress.f, om.perf.f} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	return errors.Join(errs...)
}
