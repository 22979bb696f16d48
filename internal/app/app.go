package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"countdowntray/internal/clock"
	"countdowntray/internal/config"
	"countdowntray/internal/countdown"
	"countdowntray/internal/duespec"
	"countdowntray/internal/eventbus"
	"countdowntray/internal/repeat"
	"countdowntray/internal/runtime/supervisor"
	"countdowntray/internal/sink"
	logx "countdowntray/pkg/logx"
)

// Options is what the command line hands to the app. Empty fields keep the
// config file's value.
type Options struct {
	ConfigPath string

	Time   string
	Date   string
	Repeat string

	Mode     string
	LogLevel string
	Tick     time.Duration
	Timezone string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Clock  clock.Clock
}

type App struct {
	opts Options
	cfgm *config.ConfigManager
	cfg  *config.Config

	logs *logx.Service
	log  logx.Logger
	bus  eventbus.Bus

	due  time.Time
	loop *countdown.Loop
	tui  *sink.TUI
}

// New resolves the due instant and repeat rule and wires the loop to its
// sinks. Every configuration error surfaces here, before anything runs.
func New(opts Options) (*App, error) {
	if opts.Stdout == nil {
		opts.Stdout = logx.Stdout()
	}
	if opts.Stderr == nil {
		opts.Stderr = logx.Stderr()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	cfgm := config.NewConfigManager(opts.ConfigPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return nil, err
	}
	cfgm.Commit(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now := opts.Clock.Now().In(loc)

	due, err := duespec.Resolve(opts.Time, opts.Date, now)
	if err != nil {
		return nil, fmt.Errorf("due time: %w", err)
	}
	rawRepeat := opts.Repeat
	if strings.TrimSpace(rawRepeat) == "" {
		rawRepeat = cfg.Countdown.Repeat
	}
	rule, err := repeat.Parse(rawRepeat, due, loc)
	if err != nil {
		return nil, fmt.Errorf("repeat: %w", err)
	}

	logSvc, log := logx.New(logConfig(cfg, opts))
	a := &App{
		opts: opts,
		cfgm: cfgm,
		cfg:  cfg,
		logs: logSvc,
		log:  log.With(logx.String("comp", "app")),
		bus:  eventbus.New(),
		due:  due,
	}

	var out countdown.Sink
	switch cfg.Display.Mode {
	case config.ModePlain:
		out = sink.NewPlain(opts.Stdout, cfg.Display.Title)
	case config.ModeLog:
		out = sink.Log{L: log.With(logx.String("comp", "display"))}
	default:
		a.tui = sink.NewTUI(sink.TUIOptions{
			Title:  cfg.Display.Title,
			OnQuit: func() { a.loop.Exit() },
			Input:  opts.Stdin,
			Output: opts.Stdout,
		})
		out = a.tui
	}
	if cfg.Systemd.Notify {
		out = sink.Multi{out, sink.NewSystemd(log.With(logx.String("comp", "systemd")))}
	}

	state := countdown.NewState(due, rule, now)
	a.loop = countdown.NewLoop(state, out,
		countdown.WithClock(opts.Clock),
		countdown.WithTick(cfg.Tick()),
		countdown.WithLogger(log.With(logx.String("comp", "countdown"))),
		countdown.WithBus(a.bus),
	)

	a.log.Debug("app ready",
		logx.Time("due", due),
		logx.Stringer("repeat", rule),
		logx.String("mode", cfg.Display.Mode),
		logx.String("config", opts.ConfigPath),
	)
	return a, nil
}

func applyOverrides(cfg *config.Config, opts Options) error {
	if opts.Mode != "" {
		cfg.Display.Mode = opts.Mode
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Tick != 0 {
		cfg.Countdown.Tick = opts.Tick.String()
	}
	if opts.Timezone != "" {
		cfg.Countdown.Timezone = opts.Timezone
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// logConfig keeps console logs off the terminal the badge is drawn on.
func logConfig(cfg *config.Config, opts Options) logx.Config {
	lc := cfg.Logging.LogConfig()
	switch cfg.Display.Mode {
	case config.ModeTUI:
		lc.Out = io.Discard
	case config.ModeLog:
		lc.Console = true
		lc.Out = opts.Stdout
	default:
		lc.Out = opts.Stderr
	}
	return lc
}

// Loop exposes the scheduler loop.
func (a *App) Loop() *countdown.Loop { return a.loop }

func (a *App) Due() time.Time { return a.due }

// Run starts the countdown and blocks until it finishes, the user exits,
// or ctx is cancelled. In TUI mode the calling goroutine hosts the
// terminal program.
func (a *App) Run(ctx context.Context) error {
	defer a.logs.Close()

	sup := supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	if a.cfgm.Path() != "" {
		sup.GoRestart("config.watch", a.cfgm.Watch, 250*time.Millisecond, 5*time.Second, 0)
		sup.Go0("config.apply", a.applyConfig)
	}
	sup.Go0("events", a.relayEvents)
	sup.Go("countdown", a.loop.Run)

	var hostErr error
	if a.tui != nil {
		hostErr = a.tui.Run(sup.Context())
	} else {
		select {
		case <-a.loop.Done():
		case <-sup.Context().Done():
		}
	}
	a.loop.Exit()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := sup.Stop(stopCtx)
	a.log.Info("exit", logx.Stringer("status", a.loop.Status()))

	if hostErr != nil {
		return fmt.Errorf("display: %w", hostErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return err
}

// relayEvents logs loop events and keeps the badge's due line current.
func (a *App) relayEvents(ctx context.Context) {
	events, unsub := a.bus.Subscribe("countdown.", 32)
	defer unsub()
	if a.tui != nil {
		a.tui.SetDue(a.due)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if a.log.Enabled(logx.LevelTrace) {
				a.log.Trace("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
			if r, ok := e.Data.(countdown.RolloverEvent); ok && a.tui != nil {
				a.tui.SetDue(r.Next)
			}
		}
	}
}

// applyConfig applies reloaded logging settings. Other sections only take
// effect on restart.
func (a *App) applyConfig(ctx context.Context) {
	sub := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(sub)
	last := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-sub:
			if !ok {
				return
			}
			last = a.reloaded(last, next)
		}
	}
}

// reloaded merges the command-line overrides into next and applies it. It
// returns the config now in effect, which stays last when next is rejected.
func (a *App) reloaded(last, next *config.Config) *config.Config {
	// Command-line overrides still win over the file.
	eff := *next
	if err := applyOverrides(&eff, a.opts); err != nil {
		a.log.Warn("config reload rejected", logx.Err(err))
		return last
	}
	changed, restart, fields := config.SummarizeChange(last, &eff)
	if len(changed) == 0 {
		return &eff
	}
	a.log.Info("config changed", append([]logx.Field{logx.String("changed", strings.Join(changed, ","))}, fields...)...)
	if len(restart) > 0 {
		a.log.Warn("restart required for changes to take effect", logx.String("sections", strings.Join(restart, ",")))
	}
	a.logs.Apply(logConfig(&eff, a.opts))
	return &eff
}
