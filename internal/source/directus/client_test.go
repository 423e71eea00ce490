package directus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

type recorder struct {
	fields string
}

func newTestServer(t *testing.T) *httptest.Server {
	srv, _ := newRecordingServer(t)
	return srv
}

func newRecordingServer(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	mux := http.NewServeMux()

	mux.HandleFunc("/collections", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"message":"Invalid user credentials.","extensions":{"code":"INVALID_CREDENTIALS"}}]}`))
			return
		}
		w.Write([]byte(`{"data":[
			{"collection":"directus_users","meta":{"system":true},"schema":{}},
			{"collection":"posts","meta":{"note":"Blog posts","icon":"article"},"schema":{"name":"posts"}},
			{"collection":"internal","meta":{"system":true},"schema":{"name":"internal"}},
			{"collection":"folder","meta":{"note":"group"},"schema":null},
			{"collection":"settings","meta":{"singleton":true},"schema":{"name":"settings"}}
		]}`))
	})

	mux.HandleFunc("/fields/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"field":"id","type":"integer","schema":{"is_primary_key":true},"meta":{"interface":"input"}},
			{"field":"title","type":"string","schema":{"is_nullable":false},"meta":{"interface":"input","note":"Headline"}},
			{"field":"author","type":"uuid","schema":{"foreign_key_table":"authors"},"meta":{"special":["m2o"],"display_options":{"template":"{{name}}"}}},
			{"field":"cover","type":"uuid","schema":{},"meta":{"special":["file"],"interface":"file-image"}},
			{"field":"internal_notes","type":"text","schema":{},"meta":{"hidden":true}}
		]}`))
	})

	mux.HandleFunc("/items/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		rec.fields = r.URL.Query().Get("fields")
		w.Write([]byte(`{"data":[{"id":1,"title":"Hello","author":{"id":"a1","name":"Ann"}},{"id":2,"title":"World","author":null}]}`))
	})

	mux.HandleFunc("/items/settings", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"site_name":"Explorer","id":1}}`))
	})

	mux.HandleFunc("/items/posts/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":1,"title":"Hello","tags":["a","b"]}}`))
	})

	mux.HandleFunc("/items/posts/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"message":"Route doesn't exist.","extensions":{"code":"ROUTE_NOT_FOUND"}}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*Config)) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.URL = srv.URL + "/"
	cfg.Token = "secret"
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{URL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := New(Config{URL: "https://cms.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, 20, c.config.DefaultLimit)
	assert.Equal(t, []string{"*"}, c.config.Fields)
	assert.Equal(t, int64(1<<20), c.config.MaxBodyBytes)
	assert.Equal(t, int64(64<<10), c.config.MaxRowBytes)
}

func TestClient_ListCollections(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, nil)

	cols, err := c.ListCollections(context.Background())
	require.NoError(t, err)

	require.Len(t, cols, 2)
	assert.Equal(t, source.Collection{Name: "posts", Note: "Blog posts", Icon: "article"}, cols[0])
	assert.Equal(t, "settings", cols[1].Name)
	assert.True(t, cols[1].Singleton)
}

func TestClient_ListCollections_Unauthorized(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, func(cfg *Config) { cfg.Token = "wrong" })

	_, err := c.ListCollections(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.True(t, IsForbidden(err))
	assert.False(t, errors.Is(err, source.ErrNotFound))
}

func TestClient_FetchCollectionSchema(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, nil)

	fields, err := c.FetchCollectionSchema(context.Background(), "posts")
	require.NoError(t, err)
	require.Len(t, fields, 5)

	assert.True(t, fields[0].PrimaryKey)
	assert.Equal(t, "Headline", fields[1].Note)
	assert.Equal(t, "{{name}}", fields[2].DisplayTemplate)
	assert.Equal(t, "authors", fields[2].Related)
	assert.True(t, fields[4].Hidden)

	cols := source.Columns(fields)
	require.Len(t, cols, 4)
	assert.Equal(t, grid.KindRelation, cols[2].Kind)
	assert.Equal(t, "name", cols[2].DisplayKey)
	assert.Equal(t, grid.KindFile, cols[3].Kind)
}

func TestClient_FetchRows(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, nil)

	rows, err := c.FetchRows(context.Background(), "posts", 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "title", "author"}, rows[0].Keys())

	author, ok := rows[1].Get("author")
	assert.True(t, ok)
	assert.Nil(t, author)
}

func TestClient_FetchRows_Singleton(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, nil)

	rows, err := c.FetchRows(context.Background(), "settings", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"site_name", "id"}, rows[0].Keys())
}

func TestClient_FetchRows_ExpandRelations(t *testing.T) {
	srv, rec := newRecordingServer(t)
	c := newTestClient(t, srv, func(cfg *Config) { cfg.ExpandRelations = true })

	_, err := c.FetchRows(context.Background(), "posts", 5)
	require.NoError(t, err)
	assert.Equal(t, "*,author.*,cover.*", rec.fields)
}

func TestClient_FetchRow(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, nil)

	row, err := c.FetchRow(context.Background(), "posts", "1")
	require.NoError(t, err)
	tags, _ := row.Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags)

	_, err = c.FetchRow(context.Background(), "posts", "404")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListCollections(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_BodyLimit(t *testing.T) {
	items := make([]string, 10)
	for i := range items {
		items[i] = `{"id":` + strconv.Itoa(i) + `,"body":"` + strings.Repeat("x", 50) + `"}`
	}
	payload := `{"data":[` + strings.Join(items, ",") + `]}`

	mux := http.NewServeMux()
	mux.HandleFunc("/items/logs", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})
	mux.HandleFunc("/items/logs/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, func(cfg *Config) {
		cfg.MaxBodyBytes = 100
		cfg.MaxRowBytes = 100
	})

	tests := []struct {
		name    string
		limit   int
		wantErr bool
	}{
		{"too few rows for the payload", 2, true},
		{"bound grows with the limit", 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := c.FetchRows(context.Background(), "logs", tt.limit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBodyTooLarge)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, 10)
		})
	}

	_, err := c.FetchRow(context.Background(), "logs", "1")
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}
