// internal/config/config.go
//
// This package handles configuration and the .promote directory structure.
// Every project that runs the builder gets a .promote/ folder created in its
// root holding config.yaml and the logs.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// PromoteDir is the name of the directory we create in each project
	PromoteDir = ".promote"

	DefaultCompID            = 2806
	DefaultAssessmentBaseURL = "http://127.0.0.1:5000"
	DefaultSchedulerURL      = "https://support.peppypick.com/zoom/schedule_meeting"
	DefaultNotificationTTL   = 3 * time.Second
	DefaultBridgeHost        = "127.0.0.1"
	DefaultBridgePort        = 8765
)

const defaultProjectConfigYAML = `# promote project configuration
version: 1

company:
  comp_id: 2806

services:
  # Assessment service: departments, generation and submission.
  assessment_base_url: http://127.0.0.1:5000
  # Meeting scheduling endpoint (full URL).
  scheduler_url: https://support.peppypick.com/zoom/schedule_meeting
  # Per-request timeout, e.g. 30s. Empty means no client timeout.
  timeout: ""

auth:
  # Name of an environment variable holding an HS256 signing key.
  # When set, requests carry a short-lived bearer token.
  signing_key_env: ""

notifications:
  ttl: 3s

bridge:
  enabled: true
  host: 127.0.0.1
  port: 8765
`

// CompanyConfig identifies the tenant the assessment belongs to.
type CompanyConfig struct {
	CompID int `yaml:"comp_id"`
}

// ServicesConfig locates the remote collaborators.
type ServicesConfig struct {
	AssessmentBaseURL string `yaml:"assessment_base_url"`
	SchedulerURL      string `yaml:"scheduler_url"`
	Timeout           string `yaml:"timeout,omitempty"`
}

// AuthConfig controls request signing.
type AuthConfig struct {
	SigningKeyEnv string `yaml:"signing_key_env,omitempty"`
}

// NotificationsConfig tunes the toast channel.
type NotificationsConfig struct {
	TTL string `yaml:"ttl,omitempty"`
}

// BridgeConfig captures optional overrides for the loopback HTTP bridge.
type BridgeConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// ProjectConfig models .promote/config.yaml.
type ProjectConfig struct {
	Version       int                 `yaml:"version"`
	Company       CompanyConfig       `yaml:"company"`
	Services      ServicesConfig      `yaml:"services"`
	Auth          AuthConfig          `yaml:"auth"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Bridge        BridgeConfig        `yaml:"bridge"`
}

// Config holds the runtime configuration for the builder.
type Config struct {
	// ProjectDir is the directory where the user ran `promote` from
	ProjectDir string

	// PromoteProjectDir is ProjectDir/.promote
	PromoteProjectDir string

	Project ProjectConfig
}

// InitPromoteDir creates the .promote directory structure in the given
// project directory and writes a default config.yaml when none exists.
//
// .promote/
// ├── config.yaml
// └── logs/
func InitPromoteDir(projectDir string) error {
	promoteDir := filepath.Join(projectDir, PromoteDir)
	if err := os.MkdirAll(filepath.Join(promoteDir, "logs"), 0755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(promoteDir, "config.yaml"))
}

// NewConfig loads .promote/config.yaml, falling back to defaults, and then
// applies PROMOTE_* environment overrides. Overrides only live in memory;
// SetCompID never writes them back.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		PromoteProjectDir: filepath.Join(projectDir, PromoteDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.PromoteProjectDir, "logs")
}

// JournalPath is the logbook file shown in the TUI log panel.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// BridgeLogPath is the bridge server's access log.
func (c *Config) BridgeLogPath() string {
	return filepath.Join(c.LogsDir(), "bridge.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.PromoteProjectDir, "config.yaml")
}

func (c *Config) CompID() int               { return c.Project.Company.CompID }
func (c *Config) AssessmentBaseURL() string { return c.Project.Services.AssessmentBaseURL }
func (c *Config) SchedulerURL() string      { return c.Project.Services.SchedulerURL }

// Timeout is the per-request client timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	d, _ := parseDuration(c.Project.Services.Timeout)
	return d
}

// NotificationTTL is how long a toast stays visible.
func (c *Config) NotificationTTL() time.Duration {
	d, _ := parseDuration(c.Project.Notifications.TTL)
	if d <= 0 {
		return DefaultNotificationTTL
	}
	return d
}

// SigningKey reads the HS256 key from the configured environment variable.
// It returns nil when signing is not configured or the variable is empty.
func (c *Config) SigningKey() []byte {
	name := strings.TrimSpace(c.Project.Auth.SigningKeyEnv)
	if name == "" {
		return nil
	}
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return nil
	}
	return []byte(value)
}

// BridgeEnabled reports whether the confirmation bridge should start.
func (c *Config) BridgeEnabled() bool {
	return c.Project.Bridge.Enabled == nil || *c.Project.Bridge.Enabled
}

// BridgeAddr is the bridge's listen address in host:port form.
func (c *Config) BridgeAddr() string {
	host := strings.TrimSpace(c.Project.Bridge.Host)
	if host == "" {
		host = DefaultBridgeHost
	}
	port := c.Project.Bridge.Port
	if !isValidPort(port) {
		port = DefaultBridgePort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// SetCompID updates the company identifier and writes only company.comp_id
// back to .promote/config.yaml. Comments and every other key stay as the
// user left them.
func (c *Config) SetCompID(id int) error {
	if id <= 0 {
		return fmt.Errorf("config: comp_id must be positive")
	}
	if err := c.persistCompID(id); err != nil {
		return err
	}
	c.Project.Company.CompID = id
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) persistCompID(id int) error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = []byte(defaultProjectConfigYAML)
	} else if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config: %s: top level must be a mapping", path)
	}
	company := mappingEntry(root, "company")
	if company.Kind != yaml.MappingNode {
		*company = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	value := mappingEntry(company, "comp_id")
	*value = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(id), LineComment: value.LineComment}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(c.PromoteProjectDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// mappingEntry returns the value node for key, appending an empty one when
// the key is absent.
func mappingEntry(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
	m.Content = append(m.Content, k, v)
	return v
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Company.CompID == 0 {
		pc.Company.CompID = DefaultCompID
	}
	if strings.TrimSpace(pc.Services.AssessmentBaseURL) == "" {
		pc.Services.AssessmentBaseURL = DefaultAssessmentBaseURL
	}
	if strings.TrimSpace(pc.Services.SchedulerURL) == "" {
		pc.Services.SchedulerURL = DefaultSchedulerURL
	}
	if strings.TrimSpace(pc.Notifications.TTL) == "" {
		pc.Notifications.TTL = DefaultNotificationTTL.String()
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Services.AssessmentBaseURL = strings.TrimRight(strings.TrimSpace(pc.Services.AssessmentBaseURL), "/")
	pc.Services.SchedulerURL = strings.TrimSpace(pc.Services.SchedulerURL)
	pc.Services.Timeout = strings.TrimSpace(pc.Services.Timeout)
	pc.Auth.SigningKeyEnv = strings.TrimSpace(pc.Auth.SigningKeyEnv)
	pc.Notifications.TTL = strings.TrimSpace(pc.Notifications.TTL)
	pc.Bridge.Host = strings.TrimSpace(pc.Bridge.Host)
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("PROMOTE_API_BASE")); value != "" {
		pc.Services.AssessmentBaseURL = strings.TrimRight(value, "/")
	}
	if value := strings.TrimSpace(os.Getenv("PROMOTE_SCHEDULER_URL")); value != "" {
		pc.Services.SchedulerURL = value
	}
	if value := strings.TrimSpace(os.Getenv("PROMOTE_COMP_ID")); value != "" {
		if id, err := strconv.Atoi(value); err == nil && id > 0 {
			pc.Company.CompID = id
		}
	}
	if value := strings.TrimSpace(os.Getenv("PROMOTE_BRIDGE_ENABLED")); value != "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			pc.Bridge.Enabled = &enabled
		}
	}
	if value := strings.TrimSpace(os.Getenv("PROMOTE_BRIDGE_HOST")); value != "" {
		pc.Bridge.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("PROMOTE_BRIDGE_PORT")); value != "" {
		if port, err := strconv.Atoi(value); err == nil && isValidPort(port) {
			pc.Bridge.Port = port
		}
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Company.CompID <= 0 {
		return fmt.Errorf("company.comp_id must be positive")
	}
	if !isHTTPURL(pc.Services.AssessmentBaseURL) {
		return fmt.Errorf("services.assessment_base_url must be an http(s) URL")
	}
	if !isHTTPURL(pc.Services.SchedulerURL) {
		return fmt.Errorf("services.scheduler_url must be an http(s) URL")
	}
	if _, err := parseDuration(pc.Services.Timeout); err != nil {
		return fmt.Errorf("services.timeout: %w", err)
	}
	if d, err := parseDuration(pc.Notifications.TTL); err != nil {
		return fmt.Errorf("notifications.ttl: %w", err)
	} else if d < 0 {
		return fmt.Errorf("notifications.ttl must not be negative")
	}
	if pc.Bridge.Port < 0 || pc.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port must be between 0 and 65535")
	}
	return nil
}

func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

func isHTTPURL(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
