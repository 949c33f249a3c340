// Package notify is the session-wide queue of transient messages. Every
// component that reports an outcome receives a Sink; the TUI owns the
// Channel and renders whatever is still active.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 3 * time.Second

// Severity selects how a notice is rendered.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notice is a single transient message.
type Notice struct {
	ID          string
	Title       string
	Description string
	Severity    Severity
	ExpiresAt   time.Time
}

// Sink receives notices. Channel implements it; tests use recorders.
type Sink interface {
	Notify(title, description string, severity Severity)
}

// Channel stores notices until they expire.
type Channel struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	notices []Notice
}

// Option customizes a Channel.
type Option func(*Channel)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Channel) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock lets tests control expiry.
func WithClock(clock func() time.Time) Option {
	return func(c *Channel) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates an empty channel.
func New(opts ...Option) *Channel {
	c := &Channel{ttl: DefaultTTL, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// TTL reports the lifetime given to each notice.
func (c *Channel) TTL() time.Duration {
	return c.ttl
}

// Notify queues a notice that expires after the channel TTL.
func (c *Channel) Notify(title, description string, severity Severity) {
	if severity == "" {
		severity = SeverityDefault
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Severity:    severity,
		ExpiresAt:   c.clock().Add(c.ttl),
	})
}

// Active returns notices that have not expired at now, oldest first.
func (c *Channel) Active(now time.Time) []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, 0, len(c.notices))
	for _, n := range c.notices {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	return out
}

// Expire drops notices that have expired at now and reports how many went.
func (c *Channel) Expire(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.notices[:0]
	for _, n := range c.notices {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	dropped := len(c.notices) - len(kept)
	c.notices = kept
	return dropped
}

// Remove dismisses one notice early.
func (c *Channel) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Len counts stored notices, expired or not.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notices)
}

// Recorder is a Sink that keeps every notice it receives.
type Recorder struct {
	Notices []Notice
}

func (r *Recorder) Notify(title, description string, severity Severity) {
	r.Notices = append(r.Notices, Notice{Title: title, Description: description, Severity: severity})
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	if r == nil || len(r.Notices) == 0 {
		return Notice{}, false
	}
	return r.Notices[len(r.Notices)-1], true
}
