package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"countdowntray/internal/repeat"
	logx "countdowntray/pkg/logx"
)

// Config is the optional file configuration. Every field has a usable
// default, so an empty file (or none at all) is valid.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Countdown CountdownConfig `json:"countdown"`
	Display   DisplayConfig   `json:"display"`
	Systemd   SystemdConfig   `json:"systemd"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// CountdownConfig controls the scheduler loop.
//
// Tick is a Go duration string ("60s", "1m"). Timezone is an IANA name used
// to resolve the due instant and evaluate cron repeats; empty means local.
// Repeat is a default repeat rule, overridden by the command line.
type CountdownConfig struct {
	Tick     string `json:"tick,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Repeat   string `json:"repeat,omitempty"`
}

// Display modes.
const (
	ModeTUI   = "tui"
	ModePlain = "plain"
	ModeLog   = "log"
)

type DisplayConfig struct {
	Mode  string `json:"mode,omitempty"`
	Title string `json:"title,omitempty"`
}

// SystemdConfig enables sd_notify status updates when running as a
// Type=notify unit.
type SystemdConfig struct {
	Notify bool `json:"notify"`
}

const (
	DefaultTick    = 60 * time.Second
	DefaultLogPath = "./countdown.log"
)

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    LoggingFile{Path: DefaultLogPath},
		},
		Countdown: CountdownConfig{Tick: DefaultTick.String()},
		Display:   DisplayConfig{Mode: ModeTUI},
	}
}

// applyDefaults fills fields left empty by a parsed file.
func (c *Config) applyDefaults() {
	d := Defaults()
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = d.Logging.Level
	}
	if strings.TrimSpace(c.Logging.File.Path) == "" {
		c.Logging.File.Path = d.Logging.File.Path
	}
	if strings.TrimSpace(c.Countdown.Tick) == "" {
		c.Countdown.Tick = d.Countdown.Tick
	}
	if strings.TrimSpace(c.Display.Mode) == "" {
		c.Display.Mode = d.Display.Mode
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if lv := strings.TrimSpace(c.Logging.Level); lv != "" && logx.ParseLevel(lv, logx.LevelNone) == logx.LevelNone {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}

	if tick, err := ParseDurationField("countdown.tick", c.Countdown.Tick); err != nil {
		errs = append(errs, err)
	} else if tick == 0 && strings.TrimSpace(c.Countdown.Tick) != "" {
		errs = append(errs, errors.New("countdown.tick: must be > 0"))
	}

	loc, err := c.Location()
	if err != nil {
		errs = append(errs, err)
		loc = time.Local
	}

	// Building the rule checks cron syntax too.
	if _, err := repeat.Parse(c.Countdown.Repeat, time.Now(), loc); err != nil {
		errs = append(errs, fmt.Errorf("countdown.repeat: %w", err))
	}

	switch c.Display.Mode {
	case "", ModeTUI, ModePlain, ModeLog:
	default:
		errs = append(errs, fmt.Errorf("display.mode: must be one of %s, %s, %s (got %q)", ModeTUI, ModePlain, ModeLog, c.Display.Mode))
	}

	return errors.Join(errs...)
}

// Tick returns the parsed tick, or DefaultTick when unset.
func (c *Config) Tick() time.Duration {
	d, err := ParseDurationOrDefault("countdown.tick", c.Countdown.Tick, DefaultTick)
	if err != nil {
		return DefaultTick
	}
	return d
}

// Location resolves countdown.timezone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Countdown.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("countdown.timezone: %w", err)
	}
	return loc, nil
}
