package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONAppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Decode("c.json", []byte(`{"countdown":{"repeat":"1h"},"systemd":{"notify":true}}`))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, DefaultLogPath, cfg.Logging.File.Path)
	assert.Equal(t, ModeTUI, cfg.Display.Mode)
	assert.Equal(t, DefaultTick, cfg.Tick())
	assert.Equal(t, "1h", cfg.Countdown.Repeat)
	assert.True(t, cfg.Systemd.Notify)
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()
	src := `
logging:
  level: debug
  console: true
countdown:
  tick: 5s
  timezone: UTC
  repeat: "0 9 * * 1-5"
display:
  mode: plain
  title: standup
`
	cfg, err := Decode("c.yaml", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Tick())
	assert.Equal(t, ModePlain, cfg.Display.Mode)
	assert.Equal(t, "standup", cfg.Display.Title)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestDecodeAcceptsLevelAliasAndSundaySeven(t *testing.T) {
	t.Parallel()
	cfg, err := Decode("c.json", []byte(`{"logging":{"level":"WARNING"},"countdown":{"repeat":"0 9 * * 1-7"}}`))
	require.NoError(t, err)
	assert.Equal(t, "WARNING", cfg.Logging.Level)
	assert.Equal(t, "0 9 * * 1-7", cfg.Countdown.Repeat)
}

func TestDecodeEmptyIsDefaults(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"c.yaml", "c.json"} {
		cfg, err := Decode(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, Defaults(), cfg, name)
	}
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path string
		src  string
		want string
	}{
		{"unknown field", "c.json", `{"countdown":{"ticks":"1s"}}`, "unknown field"},
		{"trailing data", "c.json", `{} {}`, "trailing data"},
		{"bad yaml", "c.yml", "logging: [", "yaml unmarshal"},
		{"bad tick", "c.json", `{"countdown":{"tick":"soon"}}`, "countdown.tick"},
		{"zero tick", "c.json", `{"countdown":{"tick":"0s"}}`, "countdown.tick: must be > 0"},
		{"negative tick", "c.json", `{"countdown":{"tick":"-1s"}}`, "countdown.tick: duration must be >= 0"},
		{"bad timezone", "c.json", `{"countdown":{"timezone":"Mars/Olympus"}}`, "countdown.timezone"},
		{"bad repeat", "c.json", `{"countdown":{"repeat":"cron:nope"}}`, "countdown.repeat"},
		{"bad mode", "c.json", `{"display":{"mode":"tray"}}`, "display.mode"},
		{"bad level", "c.json", `{"logging":{"level":"loud"}}`, "logging.level"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.path, []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestManagerWithoutPathUsesDefaults(t *testing.T) {
	t.Parallel()
	m := NewConfigManager("")
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Same(t, cfg, m.Get())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, m.Watch(ctx))
}

func TestManagerLoadMissingFile(t *testing.T) {
	t.Parallel()
	m := NewConfigManager(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := m.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManagerWatchPublishesChanges(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "countdown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: {level: info}\n"), 0o644))

	m := NewConfigManager(path)
	m.debounce = 10 * time.Millisecond
	_, err := m.Load()
	require.NoError(t, err)

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	var got *Config
	// The watcher may not be registered yet; keep rewriting until it sees one.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("logging: {level: debug}\n"), 0o644)
		select {
		case got = <-ch:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, "debug", got.Logging.Level)
	assert.Equal(t, "debug", m.Get().Logging.Level)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestManagerReloadRejectsInvalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "c.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"display":{"mode":"plain"}}`), 0o644))

	m := NewConfigManager(path)
	_, err := m.Load()
	require.NoError(t, err)
	ch := m.Subscribe(1)

	require.NoError(t, os.WriteFile(path, []byte(`{"display":{"mode":"tray"}}`), 0o644))
	assert.False(t, m.reload(context.Background()))

	// Same content as committed: deduped.
	require.NoError(t, os.WriteFile(path, []byte(`{"display":{"mode":"plain"}}`), 0o644))
	assert.False(t, m.reload(context.Background()))

	m.SetValidator(func(ctx context.Context, cfg *Config) error { return assert.AnError })
	require.NoError(t, os.WriteFile(path, []byte(`{"display":{"mode":"log"}}`), 0o644))
	assert.False(t, m.reload(context.Background()))

	m.SetValidator(nil)
	assert.True(t, m.reload(context.Background()))
	assert.Equal(t, ModeLog, (<-ch).Display.Mode)
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()
	a := Defaults()
	b := Defaults()
	b.Logging.Level = "debug"
	b.Display.Mode = ModePlain

	changed, restart, fields := SummarizeChange(a, b)
	assert.Equal(t, []string{"logging", "display"}, changed)
	assert.Equal(t, []string{"display"}, restart)
	assert.NotEmpty(t, fields)

	changed, restart, _ = SummarizeChange(a, Defaults())
	assert.Empty(t, changed)
	assert.Empty(t, restart)
}
