package server

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"stockdash/internal/config"
	"stockdash/internal/dashboard"
)

//go:embed templates/index.html
var templates embed.FS

func parsePage() (*template.Template, error) {
	return template.ParseFS(templates, "templates/index.html")
}

type pageData struct {
	Theme     dashboard.Theme
	Tickers   []config.Ticker
	Selection dashboard.Inputs
}

// GET /
func (s *Server) handlePage(c *fiber.Ctx) error {
	_, sel := s.session(c)
	var buf bytes.Buffer
	err := s.page.Execute(&buf, pageData{Theme: s.theme, Tickers: s.cfg.Tickers, Selection: sel})
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
