package server

import (
	"context"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"stockdash/internal/config"
	"stockdash/internal/dashboard"
	"stockdash/internal/storage"
)

// Server serves the dashboard page and its event API. Every event opens its
// own read-only store and closes it before responding.
type Server struct {
	cfg       *config.Config
	theme     dashboard.Theme
	registry  *dashboard.Registry
	sessions  *Sessions
	page      *template.Template
	log       logrus.FieldLogger
	openStore func(path string) (*storage.Store, error)
}

func New(cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return nil, err
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}
	theme := dashboard.ThemeByName(cfg.Server.Theme)
	return &Server{
		cfg:       cfg,
		theme:     theme,
		registry:  dashboard.NewRegistry(theme),
		sessions:  NewSessions(ttl, defaultSelection(cfg)),
		page:      page,
		log:       log,
		openStore: storage.OpenReadOnly,
	}, nil
}

// defaultSelection compares the first two configured tickers in the
// fallback year.
func defaultSelection(cfg *config.Config) dashboard.Inputs {
	var in dashboard.Inputs
	if len(cfg.Tickers) > 0 {
		in.TickerA = cfg.Tickers[0].Table
	}
	if len(cfg.Tickers) > 1 {
		in.TickerB = cfg.Tickers[1].Table
	}
	year := dashboard.FallbackYear
	in.Year = &year
	return in
}

func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "stockdash",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: s.log.WithField("component", "http").WriterLevel(logrus.DebugLevel),
		Format: "${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/", s.handlePage)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	v1 := app.Group("/api/v1")
	v1.Get("/tickers", s.handleTickers)
	v1.Get("/tables", s.handleTables)
	v1.Get("/session", s.handleSession)
	v1.Post("/events/:name", s.handleEvent)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// ListenAndServe runs until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	app := s.App()
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()
	s.log.WithField("addr", addr).Info("http: listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info("http: shutting down")
		return app.Shutdown()
	}
}
