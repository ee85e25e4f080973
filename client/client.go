package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/pkg/formenc"
)

// Content types accepted by WithFormContentType.
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// Client talks to the hosted identity API.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	endpoints   Endpoints
	contentType string
	arrayFormat formenc.ArrayFormat
	apiKeyID    string
	apiSecret   string
	userAgent   string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A client without a
// cookie jar will not carry session cookies between calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoints overrides endpoint paths. Empty fields keep their defaults.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.endpoints = e.WithDefaults()
	}
}

// WithFormContentType selects how request bodies are encoded:
// ContentTypeForm (default) or ContentTypeJSON.
func WithFormContentType(ct string) Option {
	return func(c *Client) {
		if ct != "" {
			c.contentType = ct
		}
	}
}

// WithArrayFormat sets how slices are expanded in form bodies.
func WithArrayFormat(f formenc.ArrayFormat) Option {
	return func(c *Client) {
		c.arrayFormat = f
	}
}

// WithAPIKey authenticates every request with HTTP basic auth.
// Used by server-side callers.
func WithAPIKey(id, secret string) Option {
	return func(c *Client) {
		c.apiKeyID = id
		c.apiSecret = secret
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.Default(l)
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || baseURL == "" || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client: cookie jar: %w", err)
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{Jar: jar, Timeout: 30 * time.Second},
		endpoints:   DefaultEndpoints(),
		contentType: ContentTypeForm,
		arrayFormat: formenc.Indices,
		userAgent:   "stormpath-go",
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoints returns the configured endpoint paths.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Response is the raw answer of the hosted API.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cookies    []*http.Cookie
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return io.EOF
	}
	return json.Unmarshal(r.Body, v)
}

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request)

// WithCookies attaches cookies to the request, typically the ones a browser
// sent to a server-side caller.
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(r *http.Request) {
		for _, ck := range cookies {
			r.AddCookie(ck)
		}
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	opts   []RequestOption
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) encodeBody(v any) (io.Reader, string, error) {
	if v == nil {
		return nil, "", nil
	}
	if c.contentType == ContentTypeJSON {
		b, err := json.Marshal(formToJSON(v))
		if err != nil {
			return nil, "", fmt.Errorf("client: encode json body: %w", err)
		}
		return bytes.NewReader(b), ContentTypeJSON, nil
	}
	s, err := formenc.Encode(v, formenc.WithArrayFormat(c.arrayFormat))
	if err != nil {
		return nil, "", fmt.Errorf("client: encode form body: %w", err)
	}
	return strings.NewReader(s), ContentTypeForm, nil
}

// formToJSON converts Ordered bags into maps so they marshal as objects.
func formToJSON(v any) any {
	switch val := v.(type) {
	case formenc.Ordered:
		m := make(map[string]any, len(val))
		for _, f := range val {
			m[f.Key] = formToJSON(f.Value)
		}
		return m
	default:
		return v
	}
}

func (c *Client) do(ctx context.Context, req request) (*Response, error) {
	body, contentType, err := c.encodeBody(req.body)
	if err != nil {
		return nil, err
	}

	target := c.resolve(req.path, req.query)
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Accept", ContentTypeJSON)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKeyID != "" {
		httpReq.SetBasicAuth(c.apiKeyID, c.apiSecret)
	}
	for _, opt := range req.opts {
		opt(httpReq)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.DebugContext(ctx, "identity api request failed",
			logger.Component("client"),
			logger.Method(req.method),
			logger.URL(target),
			logger.Error(err),
		)
		return nil, fmt.Errorf("client: %s %s: %w", req.method, req.path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
		Cookies:    httpResp.Cookies(),
	}

	c.logger.DebugContext(ctx, "identity api request",
		logger.Component("client"),
		logger.Method(req.method),
		logger.Path(req.path),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, &Error{Response: resp, Message: errorMessage(resp)}
	}
	return resp, nil
}

func errorMessage(resp *Response) string {
	var body struct {
		ErrorMessage string `json:"errorMessage"`
		Message      string `json:"message"`
		Error        string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		switch {
		case body.ErrorMessage != "":
			return body.ErrorMessage
		case body.Message != "":
			return body.Message
		case body.Error != "":
			return body.Error
		}
	}
	return http.StatusText(resp.StatusCode)
}
