package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lumina-dev/lumina/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "lumina.json"

	// DefaultDevtoolsPort is the default inspector server port.
	DefaultDevtoolsPort = 9229

	// DefaultDevtoolsHost is the default inspector server host.
	DefaultDevtoolsHost = "localhost"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "lumina"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "lumina"

	// DefaultSnapshotPrefix is the default object key prefix for snapshots.
	DefaultSnapshotPrefix = "snapshots/"
)

// Config represents the complete lumina.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Debug enables extra runtime diagnostics.
	Debug bool `json:"debug,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// LogFormat is text or json.
	LogFormat string `json:"logFormat,omitempty"`

	// Devtools contains inspector server configuration.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Snapshot contains widget-tree snapshot upload configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevtoolsConfig contains inspector server settings.
type DevtoolsConfig struct {
	// Enabled starts the inspector alongside the app.
	Enabled bool `json:"enabled,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled installs the metrics collector.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName is the instrumentation name of reconciler spans.
	TracerName string `json:"tracerName,omitempty"`
}

// SnapshotConfig contains S3 upload settings for widget-tree snapshots.
type SnapshotConfig struct {
	// Bucket is the destination bucket. Uploads are disabled when empty.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the bucket region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `json:"endpoint,omitempty"`

	// UsePathStyle forces path-style addressing.
	UsePathStyle bool `json:"usePathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Devtools: DevtoolsConfig{
			Host: DefaultDevtoolsHost,
			Port: DefaultDevtoolsPort,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Snapshot: SnapshotConfig{
			Prefix: DefaultSnapshotPrefix,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for lumina.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E201").
				WithDetail("No lumina.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'lumina init' or create lumina.json manually")
		}
		return nil, errors.New("E201").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E201").
			WithDetail("Failed to parse lumina.json: " + err.Error()).
			WithSuggestion("Check that lumina.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E201").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E201").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Devtools.Host == "" {
		c.Devtools.Host = DefaultDevtoolsHost
	}
	if c.Devtools.Port == 0 {
		c.Devtools.Port = DefaultDevtoolsPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = DefaultSnapshotPrefix
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Devtools.Port < 0 || c.Devtools.Port > 65535 {
		return errors.New("E201").
			WithDetail("devtools.port must be between 0 and 65535")
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		return errors.New("E201").
			WithDetail("logLevel must be one of debug, info, warn, error")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.New("E201").
			WithDetail("logFormat must be text or json")
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Region == "" && c.Snapshot.Endpoint == "" {
		return errors.New("E201").
			WithDetail("snapshot.region or snapshot.endpoint is required when snapshot.bucket is set")
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level returns the configured log level. Debug forces slog.LevelDebug.
func (c *Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	if l, ok := levels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Logger builds a logger writing to w in the configured format and level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// DevtoolsAddress returns the listen address of the inspector server.
func (c *Config) DevtoolsAddress() string {
	return net.JoinHostPort(c.Devtools.Host, strconv.Itoa(c.Devtools.Port))
}

// DevtoolsURL returns the base URL of the inspector server.
func (c *Config) DevtoolsURL() string {
	return "http://" + c.DevtoolsAddress()
}

// HasSnapshots reports whether snapshot uploads are configured.
func (c *Config) HasSnapshots() bool {
	return c.Snapshot.Bucket != ""
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing lumina.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E201").
				WithDetail("No lumina.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its closest ancestor holding lumina.json. It returns the
// defaults when there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}
