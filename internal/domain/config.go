package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// Duration is a time.Duration that unmarshals from TOML strings like "30m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Estimator map[string]Estimate `toml:"estimator"` // Effort table overrides keyed by task type
	Loop      LoopConfig          `toml:"loop"`
	Approval  ApprovalConfig      `toml:"approval"`
	Log       LogConfig           `toml:"log"`
}

// LoopConfig holds settings for the task loop from the [loop] section.
type LoopConfig struct {
	DefaultMaxIterations int      `toml:"default_max_iterations,omitempty"` // Iteration ceiling when the descriptor omits one
	StaleAfter           Duration `toml:"stale_after,omitempty"`            // Staleness window for should_continue
	PollInterval         Duration `toml:"poll_interval,omitempty"`          // Completion-check polling interval
}

// ApprovalConfig holds settings for the approval gate from the [approval] section.
type ApprovalConfig struct {
	ReversibleTTL   Duration `toml:"reversible_ttl,omitempty"`   // Default TTL for reversible requests
	IrreversibleTTL Duration `toml:"irreversible_ttl,omitempty"` // Default TTL for irreversible requests (short by convention)
	PollInterval    Duration `toml:"poll_interval,omitempty"`    // wait_for_decision polling interval
	WaitTimeout     Duration `toml:"wait_timeout,omitempty"`     // Default wait_for_decision timeout
	MaxAttempts     int      `toml:"max_attempts,omitempty"`     // Retry bound for reversible execution
	BackoffInitial  Duration `toml:"backoff_initial,omitempty"`  // First retry delay
	BackoffMax      Duration `toml:"backoff_max,omitempty"`      // Retry delay cap
	ExecutorCommand string   `toml:"executor_command,omitempty"` // Program handed approved actions on stdin
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// NewDefaultConfig returns the configuration defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Loop: LoopConfig{
			DefaultMaxIterations: 10,
			StaleAfter:           Duration(30 * time.Minute),
			PollInterval:         Duration(10 * time.Second),
		},
		Approval: ApprovalConfig{
			ReversibleTTL:   Duration(72 * time.Hour),
			IrreversibleTTL: Duration(4 * time.Hour),
			PollInterval:    Duration(10 * time.Second),
			WaitTimeout:     Duration(24 * time.Hour),
			MaxAttempts:     3,
			BackoffInitial:  Duration(time.Second),
			BackoffMax:      Duration(30 * time.Second),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Well-known file and directory names.
const (
	ConfigFileName = "config.toml" // Config file name
	StoreFileName  = "state.json"  // State store file name
	AuditDirName   = "audit"       // Audit partition directory
	LogsDirName    = "logs"        // Log file directory
	DataDirName    = ".loopgate"   // Data directory name
)

// DataDir returns the loopgate data directory under the given root.
func DataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// GlobalConfigDir returns the global config directory under XDG config home.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, "loopgate")
}

// GlobalLogPath returns the path of the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, LogsDirName, "loopgate.log")
}

// TaskLogPath returns the path of a task-specific log file.
func TaskLogPath(dataDir, taskID string) string {
	return filepath.Join(dataDir, LogsDirName, "task-"+taskID+".log")
}
