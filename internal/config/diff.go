package config

import (
	"strings"

	logx "countdowntray/pkg/logx"
)

// SummarizeChange lists the sections that differ between two configs and
// returns log fields describing the new values. Only logging is applied at
// runtime; the other sections are reported in restart so the caller can warn.
func SummarizeChange(oldCfg, newCfg *Config) (changed []string, restart []string, fields []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		fields = append(fields,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file.enabled", newCfg.Logging.File.Enabled),
			logx.String("logging.file.path", strings.TrimSpace(newCfg.Logging.File.Path)),
		)
	}
	if oldCfg.Countdown != newCfg.Countdown {
		changed = append(changed, "countdown")
		restart = append(restart, "countdown")
		fields = append(fields,
			logx.String("countdown.tick", newCfg.Countdown.Tick),
			logx.String("countdown.timezone", newCfg.Countdown.Timezone),
			logx.String("countdown.repeat", newCfg.Countdown.Repeat),
		)
	}
	if oldCfg.Display != newCfg.Display {
		changed = append(changed, "display")
		restart = append(restart, "display")
		fields = append(fields, logx.String("display.mode", newCfg.Display.Mode))
	}
	if oldCfg.Systemd != newCfg.Systemd {
		changed = append(changed, "systemd")
		restart = append(restart, "systemd")
		fields = append(fields, logx.Bool("systemd.notify", newCfg.Systemd.Notify))
	}
	return changed, restart, fields
}

// LogConfig converts the logging section into logx.Config.
func (c LoggingConfig) LogConfig() logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File: logx.FileConfig{
			Enabled: c.File.Enabled,
			Path:    c.File.Path,
		},
	}
}
