package profiling

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/explorer/internal/web/router"
)

func TestRegister(t *testing.T) {
	r := router.NewRouter()
	Register(r)

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/debug/pprof/", http.StatusOK, "goroutine"},
		{"/debug/pprof/goroutine?debug=1", http.StatusOK, "goroutine profile"},
		{"/debug/pprof/heap?debug=1", http.StatusOK, "heap profile"},
		{"/debug/pprof/cmdline", http.StatusOK, ""},
		{"/debug/pprof/nosuch", http.StatusNotFound, "Unknown profile"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.contains != "" {
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}

	var patterns []string
	for _, route := range r.Routes() {
		patterns = append(patterns, route.Pattern)
	}
	assert.Contains(t, patterns, "/debug/pprof/trace")
}
