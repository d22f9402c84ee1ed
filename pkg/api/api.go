// Package api implements the REST API for parsing formulas and managing a
// registry of named formulas.
package api

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/record-formula/pkg/catalog"
	"github.com/lemonberrylabs/record-formula/pkg/formula"
	"github.com/lemonberrylabs/record-formula/pkg/store"
)

// Server is the API server.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// New creates a new API server backed by s.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             catalog.MaxSourceSize,
	})

	// Stateless parsing
	app.Post("/v1/parse", srv.parse)
	app.Post("/v1/tokenize", srv.tokenize)
	app.Get("/v1/vocabulary", srv.vocabulary)

	// Formula registry
	app.Post("/v1/formulas", srv.createFormula)
	app.Get("/v1/formulas", srv.listFormulas)
	app.Get("/v1/formulas/:formula", srv.getFormula)
	app.Patch("/v1/formulas/:formula", srv.updateFormula)
	app.Delete("/v1/formulas/:formula", srv.deleteFormula)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "formulas": s.Len()})
	})

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- Parse Handlers ---

type formulaRequest struct {
	Formula string `json:"formula"`
}

func (s *Server) parse(c *fiber.Ctx) error {
	var req formulaRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}

	expr, err := formula.ParseExpr(req.Formula)
	if err != nil {
		return sendSyntaxError(c, err)
	}
	return c.JSON(fiber.Map{
		"canonical": expr.String(),
		"ast":       formula.Encode(expr),
	})
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	var req formulaRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	return c.JSON(fiber.Map{
		"tokens": formula.EncodeTokens(formula.Tokenize(req.Formula)),
	})
}

func (s *Server) vocabulary(c *fiber.Ctx) error {
	fns := formula.UnaryFunctions()
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.String()
	}
	return c.JSON(fiber.Map{
		"functions":     names,
		"distributions": formula.Distributions(),
	})
}

// --- Formula Handlers ---

type formulaResourceRequest struct {
	Source      string `json:"source"`
	Description string `json:"description"`
}

func (s *Server) createFormula(c *fiber.Ctx) error {
	id := c.Query("formulaId")
	if id == "" {
		return sendError(c, 400, "INVALID_ARGUMENT", "formulaId query parameter is required")
	}
	if !catalog.ValidName(id) {
		return sendError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid formulaId %q", id))
	}

	var req formulaResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Source == "" {
		return sendError(c, 400, "INVALID_ARGUMENT", "source is required")
	}

	f, err := s.store.CreateFormula(id, req.Source, req.Description)
	if err != nil {
		return sendStoreError(c, err)
	}
	return c.Status(200).JSON(formulaToJSON(f, true))
}

func (s *Server) getFormula(c *fiber.Ctx) error {
	f, err := s.store.GetFormula(c.Params("formula"))
	if err != nil {
		return sendStoreError(c, err)
	}
	return c.JSON(formulaToJSON(f, true))
}

func (s *Server) listFormulas(c *fiber.Ctx) error {
	formulas := s.store.ListFormulas()

	items := make([]fiber.Map, len(formulas))
	for i, f := range formulas {
		items[i] = formulaToJSON(f, false)
	}
	return c.JSON(fiber.Map{
		"formulas": items,
	})
}

func (s *Server) updateFormula(c *fiber.Ctx) error {
	var req formulaResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Source == "" {
		return sendError(c, 400, "INVALID_ARGUMENT", "source is required")
	}

	f, err := s.store.UpdateFormula(c.Params("formula"), req.Source, req.Description)
	if err != nil {
		return sendStoreError(c, err)
	}
	return c.JSON(formulaToJSON(f, true))
}

func (s *Server) deleteFormula(c *fiber.Ctx) error {
	name := c.Params("formula")
	if err := s.store.DeleteFormula(name); err != nil {
		return sendStoreError(c, err)
	}
	return c.JSON(fiber.Map{
		"name": name,
		"done": true,
	})
}

// --- Directory Loading ---

// LoadDir loads every .yaml, .yml and .json catalog in dir into the store.
// Entries that fail to parse or collide with an existing name are logged
// and skipped; the rest of the catalog is still loaded.
func (s *Server) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading formulas directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch filepath.Ext(name) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}

		cat, err := catalog.LoadFile(filepath.Join(dir, name))
		if err != nil {
			var el *catalog.ErrorList
			if !errors.As(err, &el) {
				log.Printf("Warning: could not load %q: %v", name, err)
				continue
			}
			for _, e := range el.Errors {
				log.Printf("Warning: %v", e)
			}
		}
		if cat == nil {
			continue
		}

		for _, e := range cat.Entries {
			if _, err := s.store.CreateFormula(e.Name, e.Source, e.Description); err != nil {
				log.Printf("Warning: could not register %q from %s: %v", e.Name, name, err)
				continue
			}
			loaded++
			log.Printf("Loaded formula %q from %s", e.Name, name)
		}
	}

	log.Printf("Loaded %d formula(s) from %s", loaded, dir)
	return nil
}

// --- Helpers ---

func sendError(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

func sendSyntaxError(c *fiber.Ctx, err error) error {
	var se *formula.SyntaxError
	if !errors.As(err, &se) {
		return sendError(c, 500, "INTERNAL", err.Error())
	}
	return c.Status(400).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    400,
			"message": err.Error(),
			"status":  "INVALID_ARGUMENT",
			"details": fiber.Map{
				"rule":   string(se.Rule),
				"pos":    se.Pos,
				"column": se.Column(),
				"near":   se.Near(),
			},
		},
	})
}

func sendStoreError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, formula.ErrSyntax):
		return sendSyntaxError(c, err)
	case errors.Is(err, store.ErrNotFound):
		return sendError(c, 404, "NOT_FOUND", err.Error())
	case errors.Is(err, store.ErrAlreadyExists):
		return sendError(c, 409, "ALREADY_EXISTS", err.Error())
	default:
		return sendError(c, 500, "INTERNAL", err.Error())
	}
}

func formulaToJSON(f *store.Formula, withAST bool) fiber.Map {
	m := fiber.Map{
		"name":        f.Name,
		"description": f.Description,
		"source":      f.Source,
		"canonical":   f.Expr.String(),
		"revisionId":  f.RevisionID,
		"createTime":  f.CreateTime.Format(time.RFC3339),
		"updateTime":  f.UpdateTime.Format(time.RFC3339),
	}
	if withAST {
		m["ast"] = formula.Encode(f.Expr)
	}
	return m
}
