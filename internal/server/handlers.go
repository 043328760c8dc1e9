package server

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"stockdash/internal/dashboard"
	"stockdash/internal/render"
	"stockdash/internal/storage"
)

type eventRequest struct {
	Value json.RawMessage `json:"value"`
}

// Images holds the rendered figures as data URIs; a missing image means
// the figure was empty or could not be drawn.
type Images struct {
	Scatter  string `json:"scatter,omitempty"`
	Bar      string `json:"bar,omitempty"`
	Sharpe   string `json:"sharpe,omitempty"`
	Drawdown string `json:"drawdown,omitempty"`
}

type eventResponse struct {
	Event string `json:"event"`
	dashboard.Outputs
	Images *Images `json:"images,omitempty"`
}

// brokenStore answers every read with the error that kept the store from
// opening, so handlers degrade the same way as on a failed query.
type brokenStore struct{ err error }

func (b brokenStore) ReadTable(context.Context, string) (*storage.Table, error) { return nil, b.err }
func (b brokenStore) DistinctYears(context.Context, string) ([]int, error)      { return nil, b.err }

// POST /api/v1/events/:name
func (s *Server) handleEvent(c *fiber.Ctx) error {
	name := c.Params("name")
	if !s.registry.Has(name) {
		return fiber.NewError(fiber.StatusNotFound, "unknown event "+name)
	}

	var req eventRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	id, sel := s.session(c)
	in, err := sel.Apply(name, req.Value)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	start := time.Now()
	out, err := s.dispatch(c.UserContext(), name, in)
	if err != nil {
		return err
	}
	s.sessions.Save(id, out.Selection)

	resp := eventResponse{Event: name, Outputs: out}
	if out.Comparison != nil {
		resp.Images = s.images(out.Comparison)
	}
	s.log.WithFields(logrus.Fields{
		"event":    name,
		"ticker_a": in.TickerA,
		"ticker_b": in.TickerB,
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Debug("event handled")
	return c.JSON(resp)
}

func (s *Server) dispatch(ctx context.Context, name string, in dashboard.Inputs) (dashboard.Outputs, error) {
	store, err := s.openStore(s.cfg.Store.Path)
	if err != nil {
		s.log.WithError(err).WithField("path", s.cfg.Store.Path).Warn("open store")
		return s.registry.Dispatch(ctx, name, in, brokenStore{err: err})
	}
	defer store.Close()
	return s.registry.Dispatch(ctx, name, in, store)
}

func (s *Server) images(cmp *dashboard.Comparison) *Images {
	draw := func(fig dashboard.Figure) string {
		img, err := render.PNG(fig, s.theme)
		if err != nil {
			s.log.WithError(err).WithField("figure", fig.Title).Warn("render figure")
			return ""
		}
		return render.DataURI(img)
	}
	return &Images{
		Scatter:  draw(cmp.Scatter),
		Bar:      draw(cmp.Bar),
		Sharpe:   draw(cmp.Sharpe),
		Drawdown: draw(cmp.Drawdown),
	}
}

// session resolves the caller's session and refreshes its cookie.
func (s *Server) session(c *fiber.Ctx) (string, dashboard.Inputs) {
	// c.Cookies points into the request buffer, which fiber reuses.
	id, sel := s.sessions.Get(strings.Clone(c.Cookies(sessionCookie)))
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id, sel
}

// GET /api/v1/session
func (s *Server) handleSession(c *fiber.Ctx) error {
	_, sel := s.session(c)
	return c.JSON(sel)
}

// GET /api/v1/tickers
func (s *Server) handleTickers(c *fiber.Ctx) error {
	return c.JSON(s.cfg.Tickers)
}

type tableInfo struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// GET /api/v1/tables
func (s *Server) handleTables(c *fiber.Ctx) error {
	ctx := c.UserContext()
	store, err := s.openStore(s.cfg.Store.Path)
	if err == nil {
		defer store.Close()
		err = store.Ping(ctx)
	}
	if err != nil {
		s.log.WithError(err).Warn("open store")
		return fiber.NewError(fiber.StatusServiceUnavailable, "DB Error")
	}

	names, err := store.Tables(ctx)
	if err != nil {
		return err
	}
	out := make([]tableInfo, 0, len(names))
	for _, n := range names {
		rows, err := store.CountRows(ctx, n)
		if err != nil {
			return err
		}
		out = append(out, tableInfo{Name: n, Rows: rows})
	}
	return c.JSON(out)
}
