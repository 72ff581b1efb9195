package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"wikiq/pkg/logger"
	"wikiq/pkg/version"
)

// Middleware manipulates an outgoing request before it is executed.
// Authentication is implemented as middleware.
type Middleware func(context.Context, *http.Request) error

const defaultTimeout = 30 * time.Second

// ClientOption configures the Client.
type ClientOption func(*Client)

// Client talks to the Confluence REST API below <base>/rest/api/.
type Client struct {
	baseURL    *url.URL
	apiURL     *url.URL
	httpClient *http.Client
	timeout    time.Duration
	middleware []Middleware
	logger     *logger.Logger
	expand     Expand
	userAgent  string

	contents    *ContentService
	spaces      *SpaceService
	users       *UserService
	groups      *GroupService
	attachments *AttachmentService
	misc        *MiscService
}

// WithHTTPClient sets a custom HTTP client. The client is not modified; a
// timeout set with WithTimeout applies to a copy of it.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithMiddleware registers request middleware. Middleware runs in
// registration order.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) { c.middleware = append(c.middleware, mw...) }
}

// WithBasicAuth authenticates with a user name and an API token (cloud) or
// password (server).
func WithBasicAuth(username, token string) ClientOption {
	return WithMiddleware(func(_ context.Context, req *http.Request) error {
		req.SetBasicAuth(username, token)
		return nil
	})
}

// WithBearerToken authenticates with a personal access token.
func WithBearerToken(token string) ClientOption {
	return WithMiddleware(func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	})
}

func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithExpand replaces the default expand values.
func WithExpand(e Expand) ClientOption {
	return func(c *Client) { c.expand = e }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the Confluence instance at baseURL, e.g.
// https://example.atlassian.net/wiki.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, invalidArgument("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, invalidArgument("base URL %q must be absolute", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if u.RawPath != "" && !strings.HasSuffix(u.RawPath, "/") {
		u.RawPath += "/"
	}

	c := &Client{
		baseURL:    u,
		apiURL:     u.JoinPath("rest", "api/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		expand:     DefaultExpand(),
		userAgent:  version.UserAgent(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	c.contents = &ContentService{client: c}
	c.spaces = &SpaceService{client: c}
	c.users = &UserService{client: c}
	c.groups = &GroupService{client: c}
	c.attachments = &AttachmentService{client: c}
	c.misc = &MiscService{client: c}
	return c, nil
}

// BaseURL returns the instance URL including the context path, with a
// trailing slash.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// APIURL returns the REST API root, <base>/rest/api/.
func (c *Client) APIURL() *url.URL {
	u := *c.apiURL
	return &u
}

// Expand returns the expand values the client uses by default.
func (c *Client) Expand() Expand {
	return c.expand
}

func (c *Client) Contents() ContentAPI       { return c.contents }
func (c *Client) Spaces() SpaceAPI           { return c.spaces }
func (c *Client) Users() UserAPI             { return c.users }
func (c *Client) Groups() GroupAPI           { return c.groups }
func (c *Client) Attachments() AttachmentAPI { return c.attachments }
func (c *Client) Misc() MiscAPI              { return c.misc }

// request describes one call. path is relative to the API root unless it is
// an absolute URL or starts with a slash, in which case it is resolved
// against the server root.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	header      http.Header
	accept      []int
}

// do builds, sends and checks one request. The caller closes the body of
// the returned response. A status outside r.accept (default 200) is turned
// into an *APIError.
func (c *Client) do(ctx context.Context, op string, r request) (*http.Response, error) {
	ref, err := url.Parse(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path %q: %w", r.path, err)
	}
	u := c.apiURL.ResolveReference(ref)
	if len(r.query) > 0 {
		q := u.Query()
		for k, v := range r.query {
			q[k] = v
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, v := range r.header {
		req.Header[k] = v
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	for _, mw := range c.middleware {
		if err := mw(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to apply middleware: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	c.logger.Debug("%s %s -> %d", r.method, u.Path, resp.StatusCode)

	accept := r.accept
	if len(accept) == 0 {
		accept = []int{http.StatusOK}
	}
	if !slices.Contains(accept, resp.StatusCode) {
		defer resp.Body.Close()
		return nil, newAPIError(op, resp)
	}
	return resp, nil
}

// getJSON issues a GET and decodes a 200 answer into out.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, op, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(op, resp, out)
}

// sendJSON sends body as JSON and decodes the answer into out when out is
// non-nil.
func (c *Client) sendJSON(ctx context.Context, op, method, path string, body []byte, out any, accept ...int) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	resp, err := c.do(ctx, op, request{
		method:      method,
		path:        path,
		body:        reader,
		contentType: "application/json",
		accept:      accept,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decode(op, resp, out)
}

func decode(op string, resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// endpoint joins path segments, escaping each one.
func endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

// resolveLink turns a link from a _links object into an absolute URL.
// Relative links are relative to base, or to the client base URL when the
// payload did not carry one.
func (c *Client) resolveLink(base, link string) (*url.URL, error) {
	if link == "" {
		return nil, invalidArgument("link is empty")
	}
	ref, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("failed to parse link %q: %w", link, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	if base == "" {
		base = c.baseURL.String()
	}
	return url.Parse(strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(link, "/"))
}

// fetchPage requests one page of a paged collection.
func fetchPage[T any](ctx context.Context, c *Client, op, path string, query url.Values) (*Result[T], error) {
	var result Result[T]
	if err := c.getJSON(ctx, op, path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// paginate yields every element of a paged collection, following
// _links.next until the server stops announcing one.
func paginate[T any](ctx context.Context, c *Client, op, path string, query url.Values) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		current := path
		currentQuery := query
		for {
			page, err := fetchPage[T](ctx, c, op, current, currentQuery)
			if err != nil {
				yield(nil, err)
				return
			}
			for i := range page.Results {
				if !yield(&page.Results[i], nil) {
					return
				}
			}
			if !page.HasNext() || len(page.Results) == 0 {
				return
			}
			next, err := c.resolveLink(page.Links.Base, page.Links.Next)
			if err != nil {
				yield(nil, fmt.Errorf("failed to follow next link: %w", err))
				return
			}
			if next.String() == current {
				return
			}
			current = next.String()
			currentQuery = nil
		}
	}
}
