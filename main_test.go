package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/caravan-wars/api"
	"github.com/wricardo/caravan-wars/game/config"
	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/service"
	"github.com/wricardo/caravan-wars/game/world"
	"github.com/wricardo/caravan-wars/transport/mcp"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func pausedSettings() *config.Settings {
	s := config.Defaults()
	s.Speed = engine.SpeedPaused
	return &s
}

// captureSettings runs the command tree with args and returns the settings
// the root action resolved.
func captureSettings(t *testing.T, args ...string) (*config.Settings, error) {
	t.Helper()
	var (
		got    *config.Settings
		resErr error
	)
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		got, resErr = resolveSettings(cmd)
		return nil
	}
	require.NoError(t, app.Run(context.Background(), append([]string{"caravan-wars"}, args...)))
	return got, resErr
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Caravan Wars", AppName)
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	names := make([]string, 0, len(app.Commands))
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"serve", "mcp", "console"}, names)
	assert.NotNil(t, app.Action)
}

func TestResolveSettings_Defaults(t *testing.T) {
	settings, err := captureSettings(t)
	require.NoError(t, err)

	assert.Equal(t, config.Defaults(), *settings)
}

func TestResolveSettings_FlagsOverride(t *testing.T) {
	t.Setenv("CARAVAN_PORT", "7000")
	t.Setenv("CARAVAN_LANGUAGE", "pl")

	settings, err := captureSettings(t,
		"--port", "9090",
		"--host", "0.0.0.0",
		"--speed", "0",
		"--frame-rate", "30",
		"--session-ttl", "10m",
		"--debug",
	)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", settings.Addr())
	assert.Equal(t, engine.SpeedPaused, settings.Speed)
	assert.Equal(t, 30, settings.FrameRate)
	assert.Equal(t, 10*time.Minute, settings.SessionTTL)
	assert.True(t, settings.Debug)
	// Unset flags keep the environment value.
	assert.Equal(t, "pl", settings.Language)
}

func TestResolveSettings_SettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caravan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7100\nscenario: two-towns\n"), 0644))

	settings, err := captureSettings(t, "--settings", path, "--scenario", "classic")
	require.NoError(t, err)

	assert.Equal(t, 7100, settings.Port)
	assert.Equal(t, world.ClassicName, settings.Scenario)
}

func TestResolveSettings_Invalid(t *testing.T) {
	_, err := captureSettings(t, "--frame-rate", "0")
	assert.ErrorIs(t, err, config.ErrInvalidSettings)

	_, err = captureSettings(t, "--settings", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer
	setupLogging(&buf, true)
	t.Cleanup(func() { setupLogging(io.Discard, false) })

	slog.Debug("loop tick", "session", "a1b2")
	assert.Contains(t, buf.String(), "loop tick")
	assert.Contains(t, buf.String(), "session=a1b2")

	buf.Reset()
	setupLogging(&buf, false)
	slog.Debug("loop tick")
	assert.Empty(t, buf.String())
}

func TestInitializeServices(t *testing.T) {
	svc, err := initializeServices(pausedSettings())
	require.NoError(t, err)
	defer svc.game.Shutdown()

	info, err := svc.game.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, world.ClassicName, info.Scenario)
	assert.True(t, info.Running)
	assert.Equal(t, 1, svc.sessions.Count())
}

func TestInitializeServices_Errors(t *testing.T) {
	settings := pausedSettings()
	settings.ScenarioDir = "/non/existent/path"
	_, err := initializeServices(settings)
	assert.Error(t, err)

	settings = pausedSettings()
	settings.Scenario = "atlantis"
	_, err = initializeServices(settings)
	assert.ErrorIs(t, err, service.ErrScenarioNotFound)
}

func TestSessionCleanupRoutine(t *testing.T) {
	svc, err := initializeServices(pausedSettings())
	require.NoError(t, err)
	defer svc.game.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, svc.sessions, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero ttl should return immediately")
	}

	done = make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, svc.sessions, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestNewHandler(t *testing.T) {
	svc, err := initializeServices(pausedSettings())
	require.NoError(t, err)
	defer svc.game.Shutdown()

	srv := httptest.NewServer(newHandler(api.NewServer(svc.game, nil), mcp.NewClient("http://127.0.0.1:1")))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/mcp")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	resp, err = http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(initialize))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Caravan Wars")
}

func TestApiAvailable(t *testing.T) {
	svc, err := initializeServices(pausedSettings())
	require.NoError(t, err)
	defer svc.game.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	baseURL, err := startInternalAPI(ctx, api.NewServer(svc.game, nil))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(baseURL, "http://127.0.0.1:"))

	assert.Eventually(t, func() bool { return apiAvailable(ctx, baseURL) }, 2*time.Second, 20*time.Millisecond)
	assert.False(t, apiAvailable(ctx, "http://127.0.0.1:1"))
}

func TestPlayConsole(t *testing.T) {
	var notes syncBuffer
	printer := &consolePrinter{out: &notes}

	svc, err := initializeServices(pausedSettings(), printer)
	require.NoError(t, err)
	defer svc.game.Shutdown()

	var out bytes.Buffer
	in := strings.NewReader("info\n\nprice mine\nfly HARBOR\nquit\ninfo\n")
	require.NoError(t, playConsole(context.Background(), svc.game, printer, in, &out))

	assert.Contains(t, out.String(), "Caravan Wars v1.0.0 - session")
	assert.Contains(t, out.String(), "(classic)")

	text := notes.String()
	assert.Contains(t, text, "[0] Location: Central Keep")
	assert.Contains(t, text, "Prices at Mine:")
	assert.Contains(t, text, "[0] error: Unknown command: fly. Type help.")
	// quit removed the session, so nothing after it ran.
	assert.Equal(t, 1, strings.Count(text, "Location: "))
	assert.Equal(t, 0, svc.sessions.Count())
}

func TestPlayConsole_EOF(t *testing.T) {
	printer := &consolePrinter{out: io.Discard}
	svc, err := initializeServices(pausedSettings(), printer)
	require.NoError(t, err)
	defer svc.game.Shutdown()

	var out bytes.Buffer
	require.NoError(t, playConsole(context.Background(), svc.game, printer, strings.NewReader("help\n"), &out))
	assert.Equal(t, 1, svc.sessions.Count())
}

func TestConsolePrinter_FiltersSession(t *testing.T) {
	var buf bytes.Buffer
	printer := &consolePrinter{out: &buf}
	printer.follow("a1b2")

	printer.SessionUpdated(service.Update{SessionID: "zzzz", Events: []engine.Notification{{Tick: 1, Message: "elsewhere"}}})
	printer.SessionUpdated(service.Update{SessionID: "a1b2", Events: []engine.Notification{
		{Tick: 2, Kind: engine.NoteArrived, Message: "Player A arrived at Harbor."},
		{Tick: 2, Kind: engine.NoteError, Message: "Not enough gold."},
	}})

	assert.Equal(t, "[2] Player A arrived at Harbor.\n[2] error: Not enough gold.\n", buf.String())
}
