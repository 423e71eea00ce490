// Package directus reads collections, schemas and items from a
// Directus-style headless content API over REST.
package directus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// ErrBodyTooLarge is returned when a response exceeds the configured size.
var ErrBodyTooLarge = errors.New("response body too large")

// Config holds the API connection settings.
type Config struct {
	// URL is the API base URL, e.g. https://cms.example.com
	URL string
	// Token is a static access token sent as a bearer token.
	Token string
	// Timeout bounds each request.
	Timeout time.Duration
	// Fields is the fields parameter for item queries.
	Fields []string
	// ExpandRelations adds "<field>.*" for relation and file fields so
	// their cells can show labels instead of bare ids.
	ExpandRelations bool
	// DefaultLimit is used when FetchRows is called with limit <= 0.
	DefaultLimit int
	// MaxBodyBytes bounds every response body.
	MaxBodyBytes int64
	// MaxRowBytes is added to the body bound once per requested row.
	MaxRowBytes int64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		URL:          "http://localhost:8055",
		Timeout:      15 * time.Second,
		Fields:       []string{"*"},
		DefaultLimit: 20,
		MaxBodyBytes: 1 << 20,
		MaxRowBytes:  64 << 10,
	}
}

// Client is a Source backed by the content API. It is safe for
// concurrent use.
type Client struct {
	base   *url.URL
	config Config
	http   *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for config.URL.
func New(config Config, opts ...Option) (*Client, error) {
	def := DefaultConfig()
	if config.URL == "" {
		return nil, fmt.Errorf("directus: url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if len(config.Fields) == 0 {
		config.Fields = def.Fields
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = def.DefaultLimit
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = def.MaxBodyBytes
	}
	if config.MaxRowBytes <= 0 {
		config.MaxRowBytes = def.MaxRowBytes
	}

	base, err := url.Parse(strings.TrimRight(config.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("directus: invalid url %q: %w", config.URL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("directus: url must be http or https, got %q", config.URL)
	}

	c := &Client{
		base:   base,
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type collectionPayload struct {
	Collection string          `json:"collection"`
	Meta       *collectionMeta `json:"meta"`
	Schema     json.RawMessage `json:"schema"`
}

type collectionMeta struct {
	Note      string `json:"note"`
	Icon      string `json:"icon"`
	Hidden    bool   `json:"hidden"`
	Singleton bool   `json:"singleton"`
	System    bool   `json:"system"`
}

// ListCollections returns user collections. System collections and
// folders without a table are skipped.
func (c *Client) ListCollections(ctx context.Context) ([]source.Collection, error) {
	var payload []collectionPayload
	if err := c.get(ctx, "/collections", nil, 0, &payload); err != nil {
		return nil, err
	}

	out := make([]source.Collection, 0, len(payload))
	for _, p := range payload {
		if strings.HasPrefix(p.Collection, "directus_") {
			continue
		}
		if p.Meta != nil && p.Meta.System {
			continue
		}
		if len(p.Schema) == 0 || string(p.Schema) == "null" {
			continue
		}
		col := source.Collection{Name: p.Collection}
		if p.Meta != nil {
			col.Note = p.Meta.Note
			col.Icon = p.Meta.Icon
			col.Singleton = p.Meta.Singleton
		}
		out = append(out, col)
	}
	return out, nil
}

type fieldPayload struct {
	Field  string `json:"field"`
	Type   string `json:"type"`
	Schema *struct {
		IsPrimaryKey    bool   `json:"is_primary_key"`
		IsNullable      bool   `json:"is_nullable"`
		ForeignKeyTable string `json:"foreign_key_table"`
	} `json:"schema"`
	Meta *struct {
		Interface      string          `json:"interface"`
		Special        []string        `json:"special"`
		Hidden         bool            `json:"hidden"`
		Note           string          `json:"note"`
		Options        json.RawMessage `json:"options"`
		DisplayOptions json.RawMessage `json:"display_options"`
	} `json:"meta"`
}

// FetchCollectionSchema returns the fields of name in API order.
func (c *Client) FetchCollectionSchema(ctx context.Context, name string) ([]source.FieldDescriptor, error) {
	var payload []fieldPayload
	if err := c.get(ctx, "/fields/"+url.PathEscape(name), nil, 0, &payload); err != nil {
		return nil, err
	}

	out := make([]source.FieldDescriptor, 0, len(payload))
	for _, p := range payload {
		fd := source.FieldDescriptor{Field: p.Field, Type: p.Type}
		if p.Schema != nil {
			fd.PrimaryKey = p.Schema.IsPrimaryKey
			fd.Nullable = p.Schema.IsNullable
			fd.Related = p.Schema.ForeignKeyTable
		}
		if p.Meta != nil {
			fd.Interface = p.Meta.Interface
			fd.Special = p.Meta.Special
			fd.Hidden = p.Meta.Hidden
			fd.Note = p.Meta.Note
			fd.DisplayTemplate = templateOf(p.Meta.DisplayOptions)
			if fd.DisplayTemplate == "" {
				fd.DisplayTemplate = templateOf(p.Meta.Options)
			}
		}
		out = append(out, fd)
	}
	return out, nil
}

func templateOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var opts struct {
		Template string `json:"template"`
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return ""
	}
	return opts.Template
}

// FetchRows returns up to limit items of name.
func (c *Client) FetchRows(ctx context.Context, name string, limit int) ([]grid.Row, error) {
	if limit <= 0 {
		limit = c.config.DefaultLimit
	}
	fields, err := c.itemFields(ctx, name)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("fields", strings.Join(fields, ","))

	var raw json.RawMessage
	if err := c.get(ctx, "/items/"+url.PathEscape(name), q, limit, &raw); err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

// FetchRow returns the item of name with primary key id.
func (c *Client) FetchRow(ctx context.Context, name, id string) (grid.Row, error) {
	fields, err := c.itemFields(ctx, name)
	if err != nil {
		return grid.Row{}, err
	}
	q := url.Values{}
	q.Set("fields", strings.Join(fields, ","))

	var raw json.RawMessage
	path := "/items/" + url.PathEscape(name) + "/" + url.PathEscape(id)
	if err := c.get(ctx, path, q, 1, &raw); err != nil {
		return grid.Row{}, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return grid.Row{}, fmt.Errorf("directus: %s/%s: %w", name, id, source.ErrNotFound)
	}

	var row grid.Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return grid.Row{}, fmt.Errorf("directus: decode item: %w", err)
	}
	return row, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) itemFields(ctx context.Context, name string) ([]string, error) {
	if !c.config.ExpandRelations {
		return c.config.Fields, nil
	}
	schema, err := c.FetchCollectionSchema(ctx, name)
	if err != nil {
		return nil, err
	}
	fields := append([]string(nil), c.config.Fields...)
	for _, col := range source.Columns(schema) {
		if col.Kind == grid.KindRelation || col.Kind == grid.KindFile {
			fields = append(fields, col.Key+".*")
		}
	}
	return fields, nil
}

// decodeRows accepts a list of items, or a single object for singleton
// collections.
func decodeRows(raw json.RawMessage) ([]grid.Row, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || string(trimmed) == "null":
		return []grid.Row{}, nil
	case trimmed[0] == '{':
		var row grid.Row
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, fmt.Errorf("directus: decode item: %w", err)
		}
		return []grid.Row{row}, nil
	}

	var rows []grid.Row
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("directus: decode items: %w", err)
	}
	if rows == nil {
		rows = []grid.Row{}
	}
	return rows, nil
}

// get performs a GET request and decodes the "data" member into out.
// The body may not exceed MaxBodyBytes plus MaxRowBytes per requested row.
func (c *Client) get(ctx context.Context, path string, query url.Values, rows int, out any) error {
	endpoint := c.base.String() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("directus: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("directus: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("directus request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	maxBytes := c.config.MaxBodyBytes + int64(rows)*c.config.MaxRowBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("directus: read response: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return fmt.Errorf("directus: GET %s: %w (limit %d bytes)", path, ErrBodyTooLarge, maxBytes)
	}
	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, body)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("directus: decode response: %w", err)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = envelope.Data
		return nil
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("directus: decode data: %w", err)
	}
	return nil
}

// APIError is an error response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("directus: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("directus: %d: %s", e.Status, e.Message)
}

// Is makes a 404 match source.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == source.ErrNotFound && e.Status == http.StatusNotFound
}

func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var payload struct {
		Errors []struct {
			Message    string `json:"message"`
			Extensions struct {
				Code string `json:"code"`
			} `json:"extensions"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		apiErr.Message = payload.Errors[0].Message
		apiErr.Code = payload.Errors[0].Extensions.Code
	} else if len(body) > 0 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		apiErr.Message = msg
	}
	return apiErr
}

// IsForbidden reports whether err is a 401 or 403 API error.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusUnauthorized
	}
	return false
}

var _ source.Source = (*Client)(nil)
