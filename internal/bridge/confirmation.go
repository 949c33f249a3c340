package bridge

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ConfirmationPrefix is the path under which job confirmations are shown.
const ConfirmationPrefix = "/promote-assessment-created/"

// Confirmation records one accepted assessment submission.
type Confirmation struct {
	JobID       string    `json:"job_id"`
	CompID      int       `json:"comp_id,omitempty"`
	Department  string    `json:"department,omitempty"`
	Candidates  int       `json:"candidates"`
	Source      string    `json:"source,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Normalize trims identifiers before validation.
func (c *Confirmation) Normalize() {
	c.JobID = strings.TrimSpace(c.JobID)
	c.Department = strings.TrimSpace(c.Department)
	c.Source = strings.TrimSpace(c.Source)
}

// Validate enforces the fields a confirmation cannot do without.
func (c Confirmation) Validate() error {
	if c.JobID == "" {
		return errors.New("job_id is required")
	}
	if c.Candidates < 0 {
		return errors.New("candidates must not be negative")
	}
	return nil
}

// Registry keeps the confirmations seen during this process, newest last.
// A job id recorded twice keeps its first entry.
type Registry struct {
	mu      sync.RWMutex
	entries []Confirmation
	index   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

// Record stores c and reports whether it was new.
func (r *Registry) Record(c Confirmation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[c.JobID]; ok {
		return false
	}
	r.index[c.JobID] = len(r.entries)
	r.entries = append(r.entries, c)
	return true
}

// Lookup returns the confirmation recorded for jobID.
func (r *Registry) Lookup(jobID string) (Confirmation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[jobID]
	if !ok {
		return Confirmation{}, false
	}
	return r.entries[i], true
}

// List returns a copy of every recorded confirmation.
func (r *Registry) List() []Confirmation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Confirmation, len(r.entries))
	copy(out, r.entries)
	return out
}
