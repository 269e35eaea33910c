package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Browser struct {
		Headless    bool   `yaml:"headless"`
		UserAgent   string `yaml:"user_agent"`
		UserDataDir string `yaml:"user_data_dir"`
	} `yaml:"browser"`

	Capture struct {
		OperationMode            string `yaml:"operation_mode"`
		SettleDelaySeconds       int    `yaml:"settle_delay_seconds"`
		ChatDebounceMs           int    `yaml:"chat_debounce_ms"`
		RetryIntervalSeconds     int    `yaml:"retry_interval_seconds"`
		UserNamePollMs           int    `yaml:"user_name_poll_ms"`
		CaptionSetupDelaySeconds int    `yaml:"caption_setup_delay_seconds"`
		ObserverPollMs           int    `yaml:"observer_poll_ms"`
	} `yaml:"capture"`

	Storage struct {
		Database  string `yaml:"database"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"storage"`

	Recording struct {
		Enabled bool   `yaml:"enabled"`
		BitRate string `yaml:"bit_rate"`
	} `yaml:"recording"`

	Bot struct {
		Name                      string `yaml:"name"`
		MaxWaitingTimeSeconds     int    `yaml:"max_waiting_time_seconds"`
		MinRecordTimeSeconds      int    `yaml:"min_record_time_seconds"`
		LowAttendanceGraceSeconds int    `yaml:"low_attendance_grace_seconds"`
	} `yaml:"bot"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	SelectorsFile string `yaml:"selectors_file"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Browser.Headless = true
	cfg.Browser.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	cfg.Capture.OperationMode = "auto"
	cfg.Capture.SettleDelaySeconds = 10
	cfg.Capture.ChatDebounceMs = 300
	cfg.Capture.RetryIntervalSeconds = 2
	cfg.Capture.UserNamePollMs = 100
	cfg.Capture.CaptionSetupDelaySeconds = 10
	cfg.Capture.ObserverPollMs = 100
	cfg.Storage.Database = "data/meetings.db"
	cfg.Storage.OutputDir = "out"
	cfg.Recording.BitRate = "256k"
	cfg.Bot.Name = "Capture Assistant"
	cfg.Bot.MaxWaitingTimeSeconds = 1800
	cfg.Bot.MinRecordTimeSeconds = 7200
	cfg.Bot.LowAttendanceGraceSeconds = 300
	cfg.Cleanup.IntervalMinutes = 60
	cfg.Cleanup.MaxAgeHours = 72
	return cfg
}

// Load reads configuration from a YAML file, applying defaults for any
// field the file leaves unset. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %v", path, err)
	}

	return cfg, nil
}

// SettleDelay is the wait before reading a mutated caption item.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Capture.SettleDelaySeconds) * time.Second
}

// ChatDebounce is the chat mutation coalescing window.
func (c *Config) ChatDebounce() time.Duration {
	return time.Duration(c.Capture.ChatDebounceMs) * time.Millisecond
}

// RetryInterval paces indefinite retries (title resolution, chat button).
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.Capture.RetryIntervalSeconds) * time.Second
}

// UserNamePoll is the cadence of the display-name poll.
func (c *Config) UserNamePoll() time.Duration {
	return time.Duration(c.Capture.UserNamePollMs) * time.Millisecond
}

// CaptionSetupDelay lets the host UI stabilize before menu automation.
func (c *Config) CaptionSetupDelay() time.Duration {
	return time.Duration(c.Capture.CaptionSetupDelaySeconds) * time.Second
}

// ObserverPoll is the mutation-queue drain cadence.
func (c *Config) ObserverPoll() time.Duration {
	return time.Duration(c.Capture.ObserverPollMs) * time.Millisecond
}

// MaxWaitingTime bounds how long the bot waits to be admitted.
func (c *Config) MaxWaitingTime() time.Duration {
	return time.Duration(c.Bot.MaxWaitingTimeSeconds) * time.Second
}

// MinRecordTime bounds how long the bot stays once admitted.
func (c *Config) MinRecordTime() time.Duration {
	return time.Duration(c.Bot.MinRecordTimeSeconds) * time.Second
}

// LowAttendanceGrace is how long the bot stays alone before leaving.
func (c *Config) LowAttendanceGrace() time.Duration {
	return time.Duration(c.Bot.LowAttendanceGraceSeconds) * time.Second
}
