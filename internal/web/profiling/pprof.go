// Package profiling mounts the net/http/pprof handlers. The endpoints
// expose goroutine stacks and memory contents, so serve them only on
// trusted interfaces.
package profiling

import (
	"net/http"
	"net/http/pprof"

	"github.com/conduit-lang/explorer/internal/web/router"
)

// Prefix is fixed because pprof.Index resolves profile names relative
// to it.
const Prefix = "/debug/pprof"

// Register adds the pprof index, the named profiles and the cmdline,
// profile, symbol and trace endpoints under Prefix.
func Register(r *router.Router) {
	r.Group(Prefix, func(p *router.Router) {
		p.Get("/", pprof.Index)
		p.Get("/cmdline", pprof.Cmdline)
		p.Get("/profile", pprof.Profile)
		p.Get("/symbol", pprof.Symbol)
		p.Post("/symbol", pprof.Symbol)
		p.Get("/trace", pprof.Trace)
		p.Get("/{profile}", func(w http.ResponseWriter, req *http.Request) {
			pprof.Handler(router.URLParam(req, "profile")).ServeHTTP(w, req)
		})
	})
}
