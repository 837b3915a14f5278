// Command caravan-wars runs the Caravan Wars trading simulation.
//
// It supports three modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "console" – plays one session from the terminal with the text command surface
//
// Settings come from CARAVAN_* environment variables (a .env file is
// loaded first), an optional --settings file, and flags, in increasing
// order of precedence.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/caravan-wars/api"
	"github.com/wricardo/caravan-wars/game/config"
	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/service"
	"github.com/wricardo/caravan-wars/game/session"
	"github.com/wricardo/caravan-wars/transport/mcp"
	"github.com/wricardo/caravan-wars/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Caravan Wars"
)

// cleanupInterval is how often idle sessions are swept.
const cleanupInterval = time.Minute

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Running without a subcommand serves HTTP.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "caravan-wars",
		Usage:   "trading caravan simulation server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Usage: "settings file (yaml, json, toml or env)"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (default localhost)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (default 8080)"},
			&cli.StringFlag{Name: "scenario-dir", Usage: "directory containing scenario YAML files"},
			&cli.StringFlag{Name: "scenario", Usage: "default scenario for new sessions (default classic)"},
			&cli.FloatFlag{Name: "speed", Usage: "initial time multiplier, 0 starts paused (default 1)"},
			&cli.IntFlag{Name: "frame-rate", Usage: "real-time frames per second (default 10)"},
			&cli.StringFlag{Name: "language", Usage: "display language for location names (default en)"},
			&cli.DurationFlag{Name: "session-ttl", Usage: "remove sessions idle this long, 0 keeps them (default 2h)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run MCP stdio server, starting an internal HTTP API when none answers",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "external API to reuse"},
				},
				Action: runStdioMCP,
			},
			{
				Name:   "console",
				Usage:  "play one session from the terminal",
				Action: runConsole,
			},
		},
	}
}

// resolveSettings layers flags that were explicitly set over the loaded
// settings.
func resolveSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("scenario-dir") {
		settings.ScenarioDir = cmd.String("scenario-dir")
	}
	if cmd.IsSet("scenario") {
		settings.Scenario = cmd.String("scenario")
	}
	if cmd.IsSet("speed") {
		settings.Speed = cmd.Float("speed")
	}
	if cmd.IsSet("frame-rate") {
		settings.FrameRate = int(cmd.Int("frame-rate"))
	}
	if cmd.IsSet("language") {
		settings.Language = cmd.String("language")
	}
	if cmd.IsSet("session-ttl") {
		settings.SessionTTL = cmd.Duration("session-ttl")
	}
	if cmd.IsSet("debug") {
		settings.Debug = cmd.Bool("debug")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// setupLogging installs a text handler as the default logger.
func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// services bundles everything a mode needs.
type services struct {
	scenarios *config.Manager
	sessions  *session.Manager
	game      service.GameService
}

// initializeServices wires the scenario catalog, session store and game
// service. Observers receive every session update.
func initializeServices(settings *config.Settings, observers ...service.Observer) (*services, error) {
	scenarios, err := config.NewManager(settings.ScenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}
	if err := scenarios.SetDefault(settings.Scenario); err != nil {
		return nil, fmt.Errorf("failed to select default scenario: %w", err)
	}

	sessions := session.NewManager()

	opts := []service.Option{
		service.WithAutoRun(settings.FrameInterval()),
		service.WithSpeed(settings.Speed),
		service.WithLanguage(settings.Language),
	}
	for _, o := range observers {
		opts = append(opts, service.WithObserver(o))
	}

	return &services{
		scenarios: scenarios,
		sessions:  sessions,
		game:      service.NewGameService(sessions, scenarios, opts...),
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				slog.Info("cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// newHandler mounts the API at the root and the MCP proxy at /mcp.
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint, and blocks until a shutdown signal arrives.
func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	setupLogging(os.Stderr, settings.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	svc, err := initializeServices(settings, hub)
	if err != nil {
		return err
	}
	defer svc.game.Shutdown()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svc.sessions, settings.SessionTTL)
	}()

	addr := settings.Addr()
	mcpClient := mcp.NewClient("http://" + addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      newHandler(api.NewServer(svc.game, hub), mcpClient),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening",
			"addr", addr,
			"api", "http://"+addr+"/api",
			"websocket", "ws://"+addr+"/ws?session=<session_id>",
			"mcp", "http://"+addr+"/mcp",
			"version", Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	slog.Info("server stopped")
	return nil
}

// apiAvailable reports whether a Caravan Wars API answers at baseURL.
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the API on a random loopback port and returns
// its base URL.
func startInternalAPI(ctx context.Context, handler http.Handler) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	httpServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("internal HTTP server error", "error", err)
		}
	}()

	return "http://" + listener.Addr().String(), nil
}

// runStdioMCP runs an MCP stdio server. It reuses an external API when one
// answers; otherwise it starts an internal one on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol.
	setupLogging(os.Stderr, settings.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL := cmd.String("api-url")
	if apiAvailable(ctx, baseURL) {
		slog.Info("using external API server for MCP", "url", baseURL)
	} else {
		hub := websocket.NewHub()
		svc, err := initializeServices(settings, hub)
		if err != nil {
			return err
		}
		defer svc.game.Shutdown()
		go hub.Run(ctx)
		go sessionCleanupRoutine(ctx, svc.sessions, settings.SessionTTL)

		baseURL, err = startInternalAPI(ctx, api.NewServer(svc.game, hub))
		if err != nil {
			return err
		}
		slog.Info("started internal HTTP server for MCP", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	slog.Info("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// consolePrinter writes the notifications of one session as they happen.
type consolePrinter struct {
	mu        sync.Mutex
	out       io.Writer
	sessionID string
}

func (p *consolePrinter) SessionUpdated(u service.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessionID != "" && u.SessionID != p.sessionID {
		return
	}
	for _, n := range u.Events {
		fmt.Fprintln(p.out, formatNotification(n))
	}
}

func (p *consolePrinter) follow(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionID = sessionID
}

func formatNotification(n engine.Notification) string {
	if n.Kind == engine.NoteError {
		return fmt.Sprintf("[%d] error: %s", n.Tick, n.Message)
	}
	return fmt.Sprintf("[%d] %s", n.Tick, n.Message)
}

// runConsole plays one session from stdin.
func runConsole(ctx context.Context, cmd *cli.Command) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	setupLogging(os.Stderr, settings.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := &consolePrinter{out: os.Stdout}
	svc, err := initializeServices(settings, printer)
	if err != nil {
		return err
	}
	defer svc.game.Shutdown()

	return playConsole(ctx, svc.game, printer, os.Stdin, os.Stdout)
}

// playConsole creates a session and feeds it one command per input line
// until EOF, "quit", or ctx ends.
func playConsole(ctx context.Context, game service.GameService, printer *consolePrinter, in io.Reader, out io.Writer) error {
	info, err := game.CreateSession(ctx, "")
	if err != nil {
		return err
	}
	printer.follow(info.ID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintf(out, "%s v%s - session %s (%s)\n", AppName, Version, info.ID, info.Scenario)
	fmt.Fprintln(out, "Type 'help' for commands, 'quit' to leave.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "quit", "exit":
				return game.DeleteSession(ctx, info.ID)
			}
			if _, err := game.Exec(ctx, info.ID, 0, line); err != nil {
				return err
			}
		}
	}
}
