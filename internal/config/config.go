package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds monitor settings shared by the handmon binary.
type Config struct {
	// OutputFile is the path of the text file receiving the confirmed handedness.
	OutputFile string `yaml:"output_file"`
	// PollInterval is the fixed delay between recognizer samples.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Confirmations is the number of consecutive identical readings required
	// before a changed handedness is accepted.
	Confirmations int `yaml:"confirmations"`
	// LivenessEvery is the number of poll ticks between actuator liveness
	// checks performed outside the send path. Zero disables the check.
	LivenessEvery int `yaml:"liveness_every"`
	// Recognizer configures the external classifier command.
	Recognizer Recognizer `yaml:"recognizer"`
	// Region is the screen region handed to the recognizer.
	Region Region `yaml:"region"`
	// Serial configures the actuator link.
	Serial Serial `yaml:"serial"`
}

// Recognizer describes the external classifier invocation.
// The command is expected to print LH or RH on stdout; anything else
// counts as an unknown reading.
type Recognizer struct {
	// Command is the executable to run each tick.
	Command string `yaml:"command"`
	// Args are passed verbatim before the region arguments.
	Args []string `yaml:"args"`
	// Timeout bounds a single invocation.
	Timeout time.Duration `yaml:"timeout"`
}

// Region is a screen rectangle in pixels.
type Region struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Serial holds tuning for the actuator channel. All windows are upper
// bounds; the channel never blocks longer than the window it is in.
type Serial struct {
	// Port is the serial port identifier. Empty means auto-discover,
	// and the monitor runs without an actuator when discovery finds nothing.
	Port string `yaml:"port"`
	// BaudRate of the link.
	BaudRate int `yaml:"baud_rate"`
	// ReadTimeout bounds a single port read.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// SettleDelay is the pause after opening the port, giving the board
	// time to finish its hardware reset.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// StartupDrain is the window for consuming stale startup chatter.
	StartupDrain time.Duration `yaml:"startup_drain"`
	// ProbeWindow bounds the wait for a liveness/verification response.
	ProbeWindow time.Duration `yaml:"probe_window"`
	// AckWindow bounds the wait for a command acknowledgment.
	AckWindow time.Duration `yaml:"ack_window"`
	// GraceWindow is the trailing drain after the first acknowledgment line.
	GraceWindow time.Duration `yaml:"grace_window"`
	// MaxRetries is the total number of connect+send attempts per command.
	MaxRetries int `yaml:"max_retries"`
	// RetryBackoff is the fixed pause between attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

const (
	// DefaultConfigFilename is the default filename for monitor settings.
	DefaultConfigFilename = "handmon-settings.yaml"

	// DefaultOutputFilename is the default file receiving the confirmed state.
	DefaultOutputFilename = "player_handedness.txt"

	// DefaultPollInterval is the default delay between recognizer samples.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultConfirmations is the default confirmation threshold.
	DefaultConfirmations = 2

	// DefaultLivenessEvery is the default number of ticks between
	// actuator liveness checks (5 minutes at the default interval).
	DefaultLivenessEvery = 300

	// DefaultBaudRate matches the actuator firmware.
	DefaultBaudRate = 9600

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errOutputFileRequired is returned when the output file path is missing.
	errOutputFileRequired = errors.New("output file must be provided")
	// errPollIntervalInvalid is returned for a non-positive poll interval.
	errPollIntervalInvalid = errors.New("poll interval must be positive")
	// errConfirmationsInvalid is returned for a confirmation threshold below 1.
	errConfirmationsInvalid = errors.New("confirmations must be at least 1")
	// errRegionInvalid is returned for a malformed screen region.
	errRegionInvalid = errors.New("region must have non-negative origin and positive dimensions")
	// errBaudRateInvalid is returned for a non-positive baud rate.
	errBaudRateInvalid = errors.New("baud rate must be positive")
	// errMaxRetriesInvalid is returned for a retry budget below 1.
	errMaxRetriesInvalid = errors.New("max retries must be at least 1")
	// errLivenessInvalid is returned for a negative liveness tick count.
	errLivenessInvalid = errors.New("liveness interval must not be negative")
)

// Default returns a configuration with all tunables at their defaults,
// mirroring the values the actuator firmware was tuned against.
func Default() *Config {
	return &Config{
		OutputFile:    DefaultOutputFilename,
		PollInterval:  DefaultPollInterval,
		Confirmations: DefaultConfirmations,
		LivenessEvery: DefaultLivenessEvery,
		Recognizer: Recognizer{
			Timeout: 2 * time.Second,
		},
		Serial: Serial{
			BaudRate:     DefaultBaudRate,
			ReadTimeout:  200 * time.Millisecond,
			SettleDelay:  2500 * time.Millisecond,
			StartupDrain: 3 * time.Second,
			ProbeWindow:  2 * time.Second,
			AckWindow:    3 * time.Second,
			GraceWindow:  500 * time.Millisecond,
			MaxRetries:   3,
			RetryBackoff: time.Second,
		},
	}
}

// Load reads configuration from the provided path and validates essential fields.
// Values absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
// Validation failures are fatal at construction; nothing past this boundary
// re-checks configuration at runtime.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.OutputFile == "" {
		return errOutputFileRequired
	}

	if cfg.PollInterval <= 0 {
		return errPollIntervalInvalid
	}

	if cfg.Confirmations < 1 {
		return errConfirmationsInvalid
	}

	if cfg.LivenessEvery < 0 {
		return errLivenessInvalid
	}

	if cfg.Recognizer.Command != "" {
		if cfg.Region.Left < 0 || cfg.Region.Top < 0 ||
			cfg.Region.Width <= 0 || cfg.Region.Height <= 0 {
			return errRegionInvalid
		}
	}

	if cfg.Serial.BaudRate <= 0 {
		return errBaudRateInvalid
	}

	if cfg.Serial.MaxRetries < 1 {
		return errMaxRetriesInvalid
	}

	return nil
}
