package site

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// maxReportedSection bounds how much of a rejected section id reaches the event sink.
const maxReportedSection = 64

// Fallback serves the pages used when the portfolio itself cannot be.
type Fallback interface {
	ServeMaintenance(w http.ResponseWriter, r *http.Request)
	ServeNotFound(w http.ResponseWriter, r *http.Request)
}

type Options struct {
	Logger   log.Logger
	Renderer *Renderer
	Events   *guard.Events
	Fallback Fallback
}

type Handler struct {
	logger   log.Logger
	renderer *Renderer
	events   *guard.Events
	fallback Fallback
}

func NewHandler(opts Options) (*Handler, error) {
	if opts.Renderer == nil {
		return nil, xerrors.New("site: Renderer is nil")
	}
	L := opts.Logger
	if L == nil {
		L = log.Nop()
	}
	return &Handler{logger: L, renderer: opts.Renderer, events: opts.Events, fallback: opts.Fallback}, nil
}

// RegisterRoutes mounts the page and section navigation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.servePage)
	r.Head("/", h.servePage)
	r.Get("/go/{section}", h.serveSection)
	r.Head("/go/{section}", h.serveSection)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", page.ETag)
	http.ServeContent(w, r, "index.html", page.LoadedAt, bytes.NewReader(page.Body))
}

// serveSection redirects to an in-page anchor. Only allow-listed sections
// that exist on the current page are followed.
func (h *Handler) serveSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "section")
	if !IsSection(id) {
		reported := id
		if len(reported) > maxReportedSection {
			reported = reported[:maxReportedSection]
		}
		h.events.Record(r.Context(), guard.EventInvalidSection, map[string]any{"section": guard.SanitizeText(reported)})
		h.notFound(w, r)
		return
	}

	page, ok := h.page(w, r)
	if !ok {
		return
	}
	if !page.HasAnchor(id) {
		h.events.Record(r.Context(), guard.EventDetachedElement, map[string]any{"id": id})
		h.notFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.Redirect(w, r, "/#"+id, http.StatusFound)
}

// page renders the active page or writes the failure response.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) (*Page, bool) {
	page, err := h.renderer.Render(r.Context())
	switch {
	case err == nil:
		return page, true
	case errors.Is(err, ErrNoProfile):
		h.maintenance(w, r)
	default:
		h.logger.Error(r.Context(), err, "page render failed")
		w.Header().Set("Cache-Control", "no-store")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	return nil, false
}

func (h *Handler) maintenance(w http.ResponseWriter, r *http.Request) {
	if h.fallback != nil {
		h.fallback.ServeMaintenance(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	if h.fallback != nil {
		h.fallback.ServeNotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.NotFound(w, r)
}
