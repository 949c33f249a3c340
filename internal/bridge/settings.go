package bridge

import (
	"net/url"
	"strings"
	"time"

	"github.com/kingrea/promote/internal/config"
)

// A confirmation is a few hundred bytes of JSON posted by a local process,
// so both the body limit and the timeouts are small.
const (
	maxConfirmationBytes int64 = 4 << 10
	requestTimeout             = 5 * time.Second
	idleTimeout                = 30 * time.Second
)

// Settings is what the server needs to start. Host, port and the
// PROMOTE_BRIDGE_* overrides are resolved by config.
type Settings struct {
	Enabled      bool
	Addr         string
	MaxBodyBytes int64
}

// SettingsFromConfig reads the bridge block of the project config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Enabled:      cfg.BridgeEnabled(),
		Addr:         cfg.BridgeAddr(),
		MaxBodyBytes: maxConfirmationBytes,
	}
}

// URL returns the HTTP base URL for the configured address.
func (s Settings) URL() string {
	return "http://" + s.Addr
}

func (s Settings) bodyLimit() int64 {
	if s.MaxBodyBytes <= 0 {
		return maxConfirmationBytes
	}
	return s.MaxBodyBytes
}

// ConfirmationURL is where the confirmation view for jobID is served.
func ConfirmationURL(base, jobID string) string {
	return strings.TrimRight(base, "/") + ConfirmationPrefix + url.PathEscape(jobID)
}
