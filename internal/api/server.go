// Package api exposes the HTTP and WebSocket control surface over the
// running interpreter: status queries, operator commands, run history, and
// a live snapshot feed.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	apimw "github.com/darkroom/agitator/internal/api/middleware"
	"github.com/darkroom/agitator/internal/health"
	"github.com/darkroom/agitator/internal/interpreter"
	"github.com/darkroom/agitator/internal/metrics"
	"github.com/darkroom/agitator/internal/recipebook"
	"github.com/darkroom/agitator/internal/runlog"
	"github.com/darkroom/agitator/internal/scheduler"
)

// Deps bundles everything the API server needs to answer requests.
type Deps struct {
	Scheduler *scheduler.Scheduler
	Snapshot  func() (interpreter.Snapshot, bool)
	StartRun  func(recipeName string) error

	Health  *health.Checker
	Metrics *metrics.Metrics
	RunLog  *runlog.Store

	JWT apimw.JWTConfig
}

// Server wraps a Fiber app and the WebSocket hub broadcasting snapshots.
type Server struct {
	app  *fiber.App
	hub  *hub
	deps Deps
}

// New builds the Fiber app and registers all routes.
func New(deps Deps) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	h := newHub()
	go h.run()

	s := &Server{app: app, hub: h, deps: deps}

	app.Use(apimw.JWTMiddleware(apimw.JWTConfig{
		SecretKey:  deps.JWT.SecretKey,
		Expiration: deps.JWT.Expiration,
		Issuer:     deps.JWT.Issuer,
		SkipPaths:  []string{"/healthz", "/metrics", "/ws"},
	}))

	app.Get("/healthz", s.handleHealthz)
	app.Get("/metrics", s.handleMetrics)

	v1 := app.Group("/api/v1")
	v1.Get("/status", s.handleStatus)
	v1.Post("/pause", s.handleCommand(scheduler.CommandPause))
	v1.Post("/resume", s.handleCommand(scheduler.CommandResume))
	v1.Post("/confirm", s.handleCommand(scheduler.CommandConfirm))
	v1.Post("/skip", s.handleCommand(scheduler.CommandSkip))
	v1.Post("/restart", s.handleCommand(scheduler.CommandRestart))
	v1.Post("/runs", s.handleStartRun)
	v1.Get("/runs/:id", s.handleRunEvents)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		s.hub.handle(c)
	}))

	return s
}

// BroadcastSnapshot forwards a Snapshot to every connected WebSocket
// client. Intended to be passed (or wrapped) as an interpreter.Observer.
func (s *Server) BroadcastSnapshot(snap interpreter.Snapshot) {
	s.hub.broadcastSnapshot(snap)
}

// Listen starts serving on addr. It blocks until the server stops.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	report := s.deps.Health.Run(ctx)
	return c.JSON(report)
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.deps.Metrics.Snapshot())
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	snap, ok := s.deps.Snapshot()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no active run"})
	}
	return c.JSON(snap)
}

func (s *Server) handleCommand(kind scheduler.CommandKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.deps.Scheduler.Submit(kind); err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}

type startRunRequest struct {
	Recipe string `json:"recipe"`
}

func (s *Server) handleStartRun(c *fiber.Ctx) error {
	var req startRunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Recipe == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipe is required"})
	}
	if err := s.deps.StartRun(req.Recipe); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true, "recipe": req.Recipe})
}

func (s *Server) handleRunEvents(c *fiber.Ctx) error {
	id := c.Params("id")
	events, err := s.deps.RunLog.EventsForRun(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(events)
}

// AvailableRecipes lists the catalog names accepted by POST /api/v1/runs,
// for clients that want to render a picker.
func AvailableRecipes() []string {
	return []string{
		recipebook.NameC41,
		recipebook.NameBWStandard,
		recipebook.NameStand,
		recipebook.NameContinuousGentle,
	}
}
