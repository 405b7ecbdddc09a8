// Package config holds the user-tunable settings for a ralph run, loaded
// from ~/.config/ralph/config.yaml and merged under command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ralph configuration.
type Config struct {
	// Agent launch settings
	Agent AgentConfig `yaml:"agent"`

	// Terminal geometry for the agent's pseudo-terminal
	Terminal TerminalConfig `yaml:"terminal"`

	// Completion/stop-hook detection
	Signals SignalsConfig `yaml:"signals"`

	// Progress log rotation
	Rotation RotationConfig `yaml:"rotation"`

	// Engine timing
	Timing TimingConfig `yaml:"timing"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AgentConfig configures the agent subprocess.
type AgentConfig struct {
	// Command is the agent binary to run (default "claude").
	Command string `yaml:"command"`
	// Args are extra arguments placed before the prompt.
	Args []string `yaml:"args"`
	// SettingsPath overrides the default ~/.config/ralph/settings.json.
	SettingsPath string `yaml:"settings_path"`
}

// TerminalConfig configures the agent PTY size.
type TerminalConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// SignalsConfig configures completion and stop-hook detection.
type SignalsConfig struct {
	CompletionMarker string   `yaml:"completion_marker"`
	StopPhrases      []string `yaml:"stop_phrases"`
}

// RotationConfig configures progress log rotation.
type RotationConfig struct {
	Threshold   int `yaml:"threshold"`
	MaxArchives int `yaml:"max_archives"`
}

// TimingConfig configures engine delays, as duration strings.
type TimingConfig struct {
	// IterationDelay is the pause between iterations.
	IterationDelay string `yaml:"iteration_delay"`
	// ExitLinger keeps the final output on screen after the child exits.
	ExitLinger string `yaml:"exit_linger"`
}

// LoggingConfig configures the run log.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Command: "claude",
			Args:    []string{"--dangerously-skip-permissions"},
		},
		Terminal: TerminalConfig{
			Rows: 45,
			Cols: 120,
		},
		Signals: SignalsConfig{
			CompletionMarker: "<promise>COMPLETE</promise>",
			StopPhrases: []string{
				"iteration complete",
				"ralph will start next iteration",
				"ran 1 stop hook",
				"stop hook",
			},
		},
		Rotation: RotationConfig{
			Threshold:   300,
			MaxArchives: 5,
		},
		Timing: TimingConfig{
			IterationDelay: "2s",
			ExitLinger:     "1500ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.config/ralph/config.yaml, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ralph", "config.yaml")
}

// Load loads configuration from a YAML file, layering it over the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if cmd := os.Getenv("RALPH_AGENT_CMD"); cmd != "" {
		c.Agent.Command = cmd
	}
	if path := os.Getenv("RALPH_SETTINGS"); path != "" {
		c.Agent.SettingsPath = path
	}
}

// ResolveSettingsPath resolves the agent settings file: the configured
// override, or ~/.config/ralph/settings.json when it exists. Returns ""
// when neither is usable.
func (c *Config) ResolveSettingsPath() string {
	if c.Agent.SettingsPath != "" {
		return c.Agent.SettingsPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "ralph", "settings.json")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// IterationDelay returns the inter-iteration pause as a duration.
func (c *Config) IterationDelay() time.Duration {
	d, err := time.ParseDuration(c.Timing.IterationDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// ExitLinger returns the post-exit linger as a duration.
func (c *Config) ExitLinger() time.Duration {
	d, err := time.ParseDuration(c.Timing.ExitLinger)
	if err != nil {
		return 1500 * time.Millisecond
	}
	return d
}
