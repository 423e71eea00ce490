package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/conduit-lang/explorer/internal/cache"
)

// JSON writes v with a weak ETag. A GET whose If-None-Match matches gets
// 304 and no body. When v cannot be encoded a 500 is written and the
// encode error returned for the caller to log.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	body, err := encode(v)
	if err != nil {
		RenderError(w, NewHTTPError(http.StatusInternalServerError, "Failed to encode response"))
		return fmt.Errorf("encode response: %w", err)
	}

	tag := cache.ETag(body)
	w.Header().Set("ETag", tag)
	if status == http.StatusOK && (r.Method == http.MethodGet || r.Method == http.MethodHead) &&
		cache.MatchesIfNoneMatch(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := encode(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
