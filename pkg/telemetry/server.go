package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/hub"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
)

// Server is the telemetry HTTP and websocket server.
type Server struct {
	cfg      Config
	geometry protocol.GeometryData
	logger   *slog.Logger

	app *fiber.App
	hub *hub.Hub

	sessionID string
	startedAt time.Time

	mu          sync.RWMutex
	cycles      uint64
	stops       uint64
	lastMessage string
	lastError   *int
	offsets     *window

	frameErrors atomic.Uint64
}

// New creates a telemetry server for a pipeline with the given geometry.
func New(cfg Config, geometry protocol.GeometryData, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}
	logger = log.Or(logger, "telemetry")

	s := &Server{
		cfg:       cfg,
		geometry:  geometry,
		logger:    logger,
		sessionID: uuid.NewString(),
		startedAt: time.Now().UTC(),
		offsets:   newWindow(cfg.StatsWindow),
	}
	s.hub = hub.New("telemetry", hub.WithLogger(logger), hub.WithGreeting(s.hello))

	app := fiber.New(fiber.Config{
		AppName:               "linefollow telemetry",
		DisableStartupMessage: true,
	})

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/status", s.handleStatus)
	api.Get("/geometry", s.handleGeometry)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(s.hub.Serve))

	s.app = app
	return s, nil
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// SessionID identifies this controller run.
func (s *Server) SessionID() string { return s.sessionID }

// Clients returns the number of websocket subscribers.
func (s *Server) Clients() int { return s.hub.Count() }

// ListenAndServe serves on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("telemetry listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	s.logger.Info("telemetry server listening",
		"addr", ln.Addr().String(),
		"session", s.sessionID,
	)

	err := s.app.Listener(ln)
	if ctx.Err() != nil {
		<-stopped
		return nil
	}
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("telemetry serve: %w", err)
	}
	return nil
}

// Publish records a cycle and streams it to subscribers without blocking.
func (s *Server) Publish(c protocol.CycleData) {
	s.mu.Lock()
	s.cycles++
	s.lastMessage = c.Message
	if c.Found {
		e := c.Error
		s.lastError = &e
		s.offsets.add(float64(c.Error))
	} else {
		s.stops++
		s.lastError = nil
	}
	s.mu.Unlock()

	msg, err := protocol.NewCycleMessage(c)
	if err == nil {
		err = s.hub.BroadcastJSON(msg)
	}
	if err != nil {
		s.logger.Error("encode cycle", "error", err)
	}
}

// FrameError counts a frame the controller could not use.
func (s *Server) FrameError() {
	s.frameErrors.Add(1)
}

// Status returns a snapshot of the controller status.
func (s *Server) Status() protocol.StatusData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := protocol.StatusData{
		SessionID:   s.sessionID,
		StartedAt:   s.startedAt,
		Cycles:      s.cycles,
		Stops:       s.stops,
		FrameErrors: s.frameErrors.Load(),
		LastMessage: s.lastMessage,
		Stats:       s.offsets.summary(),
	}
	if s.lastError != nil {
		e := *s.lastError
		st.LastError = &e
	}
	return st
}

func (s *Server) hello() (hub.Message, bool) {
	msg, err := protocol.NewMessage(protocol.TypeHello, s.Status())
	if err != nil {
		return hub.Message{}, false
	}
	data, err := msg.Bytes()
	if err != nil {
		return hub.Message{}, false
	}
	return hub.NewJSONMessage(data), true
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"session_id": s.sessionID,
		"uptime_s":   time.Since(s.startedAt).Seconds(),
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

func (s *Server) handleGeometry(c *fiber.Ctx) error {
	return c.JSON(s.geometry)
}
