// Package router is a thin layer over chi that records the routes it
// registers so the server can list them at startup.
package router

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/conduit-lang/explorer/internal/web/middleware"
)

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method  string
	Pattern string
}

// Router manages HTTP routing using chi.
type Router struct {
	mux    chi.Router
	prefix string
	routes *[]RouteInfo
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{mux: chi.NewRouter(), routes: &[]RouteInfo{}}
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Use adds middleware that runs for every route of this router. It must
// be called before any route is registered.
func (r *Router) Use(middlewares ...middleware.Middleware) {
	for _, m := range middlewares {
		r.mux.Use(m)
	}
}

// Get registers a GET (and implicit HEAD) handler.
func (r *Router) Get(pattern string, handler http.HandlerFunc) {
	r.mux.Get(pattern, handler)
	r.mux.Head(pattern, handler)
	r.record(http.MethodGet, pattern)
}

// Post registers a POST handler.
func (r *Router) Post(pattern string, handler http.HandlerFunc) {
	r.mux.Post(pattern, handler)
	r.record(http.MethodPost, pattern)
}

// Handle mounts handler for every method under pattern.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
	r.record("*", pattern)
}

// Group registers routes under a common prefix.
func (r *Router) Group(prefix string, fn func(*Router)) {
	r.mux.Route(prefix, func(sub chi.Router) {
		fn(&Router{mux: sub, prefix: r.prefix + prefix, routes: r.routes})
	})
}

// NotFound sets the 404 handler.
func (r *Router) NotFound(handler http.HandlerFunc) {
	r.mux.NotFound(handler)
}

// MethodNotAllowed sets the 405 handler.
func (r *Router) MethodNotAllowed(handler http.HandlerFunc) {
	r.mux.MethodNotAllowed(handler)
}

// Routes returns the registered routes ordered by pattern then method.
func (r *Router) Routes() []RouteInfo {
	out := append([]RouteInfo(nil), (*r.routes)...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) record(method, pattern string) {
	*r.routes = append(*r.routes, RouteInfo{Method: method, Pattern: r.prefix + pattern})
}

// URLParam returns the named path parameter of req.
func URLParam(req *http.Request, name string) string {
	return chi.URLParam(req, name)
}
