package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lodgify-exporter/models"
)

// JSONWriter writes assembled payloads as JSON files: one file per property
// plus one combined export file per run. This is the file-download delivery
// surface for the validated artifact.
type JSONWriter struct {
	dir string
}

// NewJSONWriter creates the output directory if needed.
func NewJSONWriter(dir string) (*JSONWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{dir: dir}, nil
}

// WritePayloads writes payload_<property_id>.json per property and
// export_<run_id>.json with the whole batch.
func (j *JSONWriter) WritePayloads(runID string, payloads []models.LodgifyPayload) error {
	for i := range payloads {
		p := &payloads[i]
		path := filepath.Join(j.dir, fmt.Sprintf("payload_%d.json", p.PropertyID))
		if err := writeJSONFile(path, p); err != nil {
			return err
		}
	}

	combined := filepath.Join(j.dir, fmt.Sprintf("export_%s.json", runID))
	return writeJSONFile(combined, payloads)
}

func (j *JSONWriter) Close() error { return nil }

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: encode %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", path, err)
	}
	return nil
}
