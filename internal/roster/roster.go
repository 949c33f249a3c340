package roster

import (
	"strings"

	"github.com/kingrea/promote/internal/validation"
)

const invalidEmailMessage = "Invalid email format"

// Entry is one candidate email slot and its validation state.
type Entry struct {
	Value string
	Err   string
}

// Roster is the ordered list of candidate emails. Order is preserved in the
// submitted payload.
type Roster struct {
	entries []Entry
	frozen  bool
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{}
}

// Freeze refuses every later Add, Update and Remove.
func (r *Roster) Freeze() {
	r.frozen = true
}

// Add appends an empty entry and returns its index, or -1 when frozen.
func (r *Roster) Add() int {
	if r.frozen {
		return -1
	}
	r.entries = append(r.entries, Entry{})
	return len(r.entries) - 1
}

// Update replaces the value at index and re-validates it. Blank values are
// allowed and mean "not filled yet".
func (r *Roster) Update(index int, value string) bool {
	if r.frozen || index < 0 || index >= len(r.entries) {
		return false
	}
	entry := Entry{Value: value}
	if value != "" && !validation.IsEmail(value) {
		entry.Err = invalidEmailMessage
	}
	r.entries[index] = entry
	return true
}

// Remove deletes the entry at index along with its error.
func (r *Roster) Remove(index int) bool {
	if r.frozen || index < 0 || index >= len(r.entries) {
		return false
	}
	r.entries = append(r.entries[:index], r.entries[index+1:]...)
	return true
}

// Len returns the number of entries.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Entries returns a copy of all entries.
func (r *Roster) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Submittable returns the non-blank values in order. Values that failed
// validation are still included exactly as typed.
func (r *Roster) Submittable() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if strings.TrimSpace(e.Value) == "" {
			continue
		}
		out = append(out, e.Value)
	}
	return out
}

// Invalid counts entries currently carrying a validation error.
func (r *Roster) Invalid() int {
	n := 0
	for _, e := range r.entries {
		if e.Err != "" {
			n++
		}
	}
	return n
}
