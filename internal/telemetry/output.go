package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"imagepet/internal/config"
)

// Writer writes windows.csv and interactions.csv into one directory.
// A nil Writer discards everything.
type Writer struct {
	dir               string
	windowFile        *os.File
	interactionFile   *os.File
	windowHeader      bool
	interactionHeader bool
}

// NewWriter creates the output directory and files. Returns nil if dir is empty.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	w := &Writer{dir: dir}
	f, err := os.Create(filepath.Join(dir, "windows.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating windows.csv: %w", err)
	}
	w.windowFile = f

	f, err = os.Create(filepath.Join(dir, "interactions.csv"))
	if err != nil {
		w.windowFile.Close()
		return nil, fmt.Errorf("creating interactions.csv: %w", err)
	}
	w.interactionFile = f
	return w, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// WriteConfig saves the effective configuration next to the CSV files
func (w *Writer) WriteConfig(cfg *config.Config) error {
	if w == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(w.dir, "config.yaml"))
}

// WriteWindow appends one window record
func (w *Writer) WriteWindow(stats WindowStats) error {
	if w == nil {
		return nil
	}
	if err := writeRows(w.windowFile, []WindowStats{stats}, &w.windowHeader); err != nil {
		return fmt.Errorf("writing window: %w", err)
	}
	return nil
}

// WriteInteractions appends interaction rows
func (w *Writer) WriteInteractions(rows []InteractionRow) error {
	if w == nil || len(rows) == 0 {
		return nil
	}
	if err := writeRows(w.interactionFile, rows, &w.interactionHeader); err != nil {
		return fmt.Errorf("writing interactions: %w", err)
	}
	return nil
}

// writeRows includes the header on the first write only
func writeRows[T any](f *os.File, rows []T, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(rows, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, f)
}

// Close closes the output files
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*os.File{w.windowFile, w.interactionFile} {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
