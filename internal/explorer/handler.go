package explorer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/web/middleware"
	"github.com/conduit-lang/explorer/internal/web/query"
	"github.com/conduit-lang/explorer/internal/web/response"
	"github.com/conduit-lang/explorer/internal/web/router"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"collections", "collection", "item", "error"}

// Handler serves the HTML explorer and its JSON mirror.
type Handler struct {
	service *Service
	theme   Theme
	pages   map[string]*template.Template
	logger  *zap.Logger
	api     []middleware.Middleware
}

// NewHandler parses the page templates. theme fields left empty take
// their defaults.
func NewHandler(service *Service, theme Theme, logger *zap.Logger) (*Handler, error) {
	theme = theme.withDefaults()
	if err := theme.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}

	return &Handler{service: service, theme: theme, pages: pages, logger: logger}, nil
}

// UseAPI adds middleware that only wraps the /api routes. Call it
// before Routes.
func (h *Handler) UseAPI(m ...middleware.Middleware) {
	h.api = append(h.api, m...)
}

// Routes registers the explorer's pages, API and health check on r.
func (h *Handler) Routes(r *router.Router) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, collectionsURL(), http.StatusFound)
	})
	r.Get("/healthz", h.health)
	r.Get("/collections", h.collections)
	r.Get("/collections/{name}", h.collection)
	r.Get("/collections/{name}/{id}", h.item)

	r.Group("/api", func(api *router.Router) {
		api.Use(h.api...)
		api.Get("/collections", h.apiCollections)
		api.Get("/collections/{name}", h.apiCollection)
		api.Get("/collections/{name}/{id}", h.apiItem)
	})

	r.NotFound(h.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.RenderMethodNotAllowed(w)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) collections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.Collections(r.Context())
	if err != nil {
		h.renderErrorPage(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "collections", newCollectionsPage(h.theme, collections))
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	params := query.Parse(r)
	c, table, err := h.service.Query(r.Context(), name, params)
	if err != nil {
		h.renderErrorPage(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "collection", newCollectionPage(h.theme, c, table, params))
}

func (h *Handler) item(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Item(r.Context(), pathParam(r, "name"), pathParam(r, "id"))
	if err != nil {
		h.renderErrorPage(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "item", newItemPage(h.theme, item))
}

func (h *Handler) apiCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.Collections(r.Context())
	if err != nil {
		h.renderErrorJSON(w, r, err)
		return
	}
	h.writeJSON(w, r, CollectionsJSON{Collections: collections})
}

func (h *Handler) apiCollection(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	c, table, err := h.service.Query(r.Context(), name, query.Parse(r))
	if err != nil {
		h.renderErrorJSON(w, r, err)
		return
	}
	out := NewTableJSON(name, table)
	out.Warning = c.Warning
	h.writeJSON(w, r, out)
}

func (h *Handler) apiItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Item(r.Context(), pathParam(r, "name"), pathParam(r, "id"))
	if err != nil {
		h.renderErrorJSON(w, r, err)
		return
	}
	h.writeJSON(w, r, NewItemJSON(item))
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		response.RenderNotFound(w, "")
		return
	}
	h.render(w, http.StatusNotFound, "error", errorPage{
		layoutData: layoutData{Theme: h.theme, Title: "Not found"},
		Status:     http.StatusNotFound,
		Message:    "Page not found",
	})
}

func (h *Handler) renderErrorPage(w http.ResponseWriter, r *http.Request, err error) {
	e := response.FromError(err)
	h.logError(r, e)
	h.render(w, e.StatusCode, "error", errorPage{
		layoutData: layoutData{Theme: h.theme, Title: http.StatusText(e.StatusCode)},
		Status:     e.StatusCode,
		Message:    e.Message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	if err := response.JSON(w, r, http.StatusOK, v); err != nil {
		h.logger.Error("write json", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h *Handler) renderErrorJSON(w http.ResponseWriter, r *http.Request, err error) {
	e := response.FromError(err)
	h.logError(r, e)
	response.RenderError(w, e)
}

func (h *Handler) logError(r *http.Request, e *response.HTTPError) {
	fields := []zap.Field{zap.String("path", r.URL.Path), zap.Int("status", e.StatusCode), zap.Error(e.Err)}
	if e.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("fetch failed", fields...)
		return
	}
	h.logger.Debug("fetch failed", fields...)
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// pathParam returns a decoded path parameter. chi matches on the raw
// path when one is set, so escaped names arrive still escaped.
// pathParam returns a decoded route parameter. The router matches on
// RawPath when it is set, leaving parameters escaped, and on the already
// decoded Path otherwise.
func pathParam(r *http.Request, name string) string {
	v := router.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}
