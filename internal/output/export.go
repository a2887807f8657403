package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"

	"github.com/protoprobe/protoprobe/internal/probe"
)

// ExportDocument is the on-disk shape of an exported result log. Outcomes
// keep the order in which they were recorded.
type ExportDocument struct {
	RunID     string          `json:"run_id"`
	Timestamp int64           `json:"timestamp"`
	BaseURL   string          `json:"base_url"`
	HTTPSURL  string          `json:"https_url"`
	Results   []probe.Outcome `json:"results"`
}

// Export writes the result log to path as indented JSON. The file is guarded
// with an advisory lock so concurrent harness runs pointed at the same path
// do not interleave writes.
func Export(path, baseURL, httpsURL string, outcomes []probe.Outcome) error {
	doc := ExportDocument{
		RunID:     ulid.Make().String(),
		Timestamp: time.Now().Unix(),
		BaseURL:   baseURL,
		HTTPSURL:  httpsURL,
		Results:   outcomes,
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock export file: %w", err)
	}
	defer lock.Unlock()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		file.Close()
		return fmt.Errorf("encode export: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}
