package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Reporter posts confirmations to a running bridge, letting headless
// submissions show up in the TUI's registry.
type Reporter struct {
	base string
	http *http.Client
}

// NewReporter targets the bridge at base (e.g. http://127.0.0.1:8765).
func NewReporter(base string, client *http.Client) *Reporter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Reporter{base: strings.TrimRight(base, "/"), http: client}
}

// Report records c on the bridge. Duplicates are not an error.
func (r *Reporter) Report(ctx context.Context, c Confirmation) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("bridge: encode confirmation: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/submissions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bridge: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge: report: unexpected status %d", resp.StatusCode)
	}
	return nil
}
