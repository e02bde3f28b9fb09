package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"lodgify-exporter/models"
)

// CSVWriter appends generation statistics to a CSV report file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"run_id", "generated_at", "total_properties", "total_dates", "rates_generated",
		"entries_before", "entries_after", "reduction_pct", "duration_ms",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteStatistics appends one run's summary row.
func (c *CSVWriter) WriteStatistics(stats *models.GenerationStatistics) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := []string{
		stats.RunID,
		time.Now().Format(time.RFC3339),
		strconv.Itoa(stats.TotalProperties),
		strconv.Itoa(stats.TotalDates),
		strconv.Itoa(stats.TotalRatesGenerated),
		strconv.Itoa(stats.EntriesBeforeOptimization),
		strconv.Itoa(stats.EntriesAfterOptimization),
		fmt.Sprintf("%.2f", stats.OptimizationReductionPct),
		strconv.FormatInt(stats.GenerationTime.Milliseconds(), 10),
	}
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
