package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiq/pkg/logger"
)

func newTestClient(t *testing.T, mux *http.ServeMux, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{WithBasicAuth("test@example.com", "test-token")}, opts...)
	c, err := NewClient(srv.URL+"/wiki", opts...)
	require.NoError(t, err)
	return c, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if s, ok := v.(string); ok {
		_, _ = w.Write([]byte(s))
		return
	}
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("https://test.atlassian.net/wiki")
	require.NoError(t, err)

	assert.Equal(t, "https://test.atlassian.net/wiki/", c.BaseURL().String())
	assert.Equal(t, "https://test.atlassian.net/wiki/rest/api/", c.APIURL().String())
	assert.Equal(t, DefaultExpand(), c.Expand())
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.NotNil(t, c.Contents())
	assert.NotNil(t, c.Spaces())
	assert.NotNil(t, c.Users())
	assert.NotNil(t, c.Groups())
	assert.NotNil(t, c.Attachments())
	assert.NotNil(t, c.Misc())
}

func TestNewClientWithoutContextPath(t *testing.T) {
	c, err := NewClient("https://confluence.example.com?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://confluence.example.com/rest/api/", c.APIURL().String())
}

func TestNewClientRejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"", "   ", "example.com/wiki", "/wiki"} {
		_, err := NewClient(raw)
		assert.ErrorIs(t, err, ErrInvalidArgument, raw)
	}
	_, err := NewClient("http://[::1")
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	httpClient := &http.Client{}
	log := logger.New(true)
	expand := Expand{Search: []string{"body.view"}}

	c, err := NewClient("https://test.atlassian.net/wiki",
		WithHTTPClient(httpClient),
		WithTimeout(5*time.Second),
		WithLogger(log),
		WithExpand(expand),
		WithUserAgent("custom/1.0"),
	)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Same(t, log, c.logger)
	assert.Equal(t, expand, c.Expand())
	assert.Equal(t, "custom/1.0", c.userAgent)
}

func TestTimeoutLeavesSharedHTTPClientAlone(t *testing.T) {
	transport := &http.Transport{}
	shared := &http.Client{Transport: transport}

	c, err := NewClient("https://test.atlassian.net/wiki", WithHTTPClient(shared), WithTimeout(3*time.Second))
	require.NoError(t, err)

	assert.Zero(t, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.Same(t, transport, c.httpClient.Transport)

	plain, err := NewClient("https://test.atlassian.net/wiki", WithHTTPClient(shared))
	require.NoError(t, err)
	assert.Same(t, shared, plain.httpClient)
}

func TestNilHTTPClientFallsBackToDefault(t *testing.T) {
	c, err := NewClient("https://test.atlassian.net/wiki", WithHTTPClient(nil), WithTimeout(time.Second))
	require.NoError(t, err)
	require.NotNil(t, c.httpClient)
	assert.Equal(t, time.Second, c.httpClient.Timeout)

	d, err := NewClient("https://test.atlassian.net/wiki")
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, d.httpClient.Timeout)
}

func TestBasicAuthAndHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/rest/api/user/current", func(w http.ResponseWriter, r *http.Request) {
		user, token, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "test@example.com", user)
		assert.Equal(t, "test-token", token)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "wikiq-test", r.Header.Get("User-Agent"))
		writeJSON(t, w, http.StatusOK, User{AccountID: "abc", DisplayName: "Test User"})
	})
	c, _ := newTestClient(t, mux, WithUserAgent("wikiq-test"))

	user, err := c.Users().GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Test User", user.DisplayName)
}

func TestBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pat-123", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, User{AccountID: "abc"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithBearerToken("pat-123"))
	require.NoError(t, err)

	_, err = c.Users().GetCurrentUser(context.Background())
	require.NoError(t, err)
}

func TestMiddlewareOrderAndError(t *testing.T) {
	var order []string
	first := func(_ context.Context, r *http.Request) error {
		order = append(order, "first")
		r.Header.Set("X-Trace", "1")
		return nil
	}
	second := func(_ context.Context, r *http.Request) error {
		order = append(order, "second:"+r.Header.Get("X-Trace"))
		return errors.New("token expired")
	}

	c, err := NewClient("https://test.atlassian.net/wiki", WithMiddleware(first, second))
	require.NoError(t, err)

	_, err = c.Users().GetCurrentUser(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
	assert.Equal(t, []string{"first", "second:1"}, order)
}

func TestAPIErrorFromJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/rest/api/content/404", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, `{"statusCode":404,"message":"No content found with id : 404","reason":"Not Found"}`)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Contents().Get(context.Background(), "404")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "get content", apiErr.Operation)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not Found", apiErr.Reason)
	assert.Equal(t, "No content found with id : 404", apiErr.Message)
	assert.Equal(t, "confluence: get content failed with status 404: No content found with id : 404", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsForbidden(err))
}

func TestAPIErrorFromPlainText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/rest/api/user/current", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Basic authentication with passwords is deprecated", http.StatusUnauthorized)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Users().GetCurrentUser(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Unauthorized", apiErr.Reason)
	assert.Equal(t, "Basic authentication with passwords is deprecated", apiErr.Message)
	assert.True(t, IsUnauthorized(err))
}

func TestAPIErrorNestedMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /wiki/rest/api/space", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, `{"data":{"errors":[{"message":{"translation":"A space with key TEST already exists"}}]}}`)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Spaces().Create(context.Background(), "TEST", "Test", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "A space with key TEST already exists", apiErr.Message)
	assert.Equal(t, "Bad Request", apiErr.Reason)
}

func TestErrorHelpersOnWrappedErrors(t *testing.T) {
	base := &APIError{Operation: "get space", StatusCode: http.StatusForbidden}
	wrapped := fmt.Errorf("loading space: %w", base)

	assert.True(t, IsForbidden(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsForbidden(errors.New("regular error")))
	assert.False(t, IsUnauthorized(nil))
}

func TestUpdateForbiddenError(t *testing.T) {
	err := &UpdateForbiddenError{ContentID: "123456", Title: "Test Page", Msg: "Access denied"}

	assert.Equal(t, "Access denied", err.Error())
	assert.True(t, IsUpdateForbidden(err))
	assert.True(t, IsUpdateForbidden(fmt.Errorf("sync: %w", err)))
	assert.False(t, IsUpdateForbidden(errors.New("regular error")))
}

func TestResolveLink(t *testing.T) {
	c, err := NewClient("https://test.atlassian.net/wiki")
	require.NoError(t, err)

	u, err := c.resolveLink("", "/spaces/TEST/pages/1")
	require.NoError(t, err)
	assert.Equal(t, "https://test.atlassian.net/wiki/spaces/TEST/pages/1", u.String())

	u, err = c.resolveLink("https://other.example.com/confluence", "/x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/confluence/x", u.String())

	u, err = c.resolveLink("", "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", u.String())

	_, err = c.resolveLink("", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPaginateFollowsNextLinks(t *testing.T) {
	var base string
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/rest/api/space", func(w http.ResponseWriter, r *http.Request) {
		requests++
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		switch start {
		case 0:
			writeJSON(t, w, http.StatusOK, Result[Space]{
				Results: []Space{{Key: "A"}, {Key: "B"}},
				Size:    2,
				Links:   Links{Base: base, Next: "/rest/api/space?start=2&limit=2"},
			})
		case 2:
			writeJSON(t, w, http.StatusOK, Result[Space]{
				Results: []Space{{Key: "C"}},
				Start:   2,
				Size:    1,
			})
		default:
			t.Errorf("unexpected start %d", start)
		}
	})
	c, srv := newTestClient(t, mux)
	base = srv.URL + "/wiki"

	var keys []string
	for space, err := range c.Spaces().All(context.Background()) {
		require.NoError(t, err)
		keys = append(keys, space.Key)
	}
	assert.Equal(t, []string{"A", "B", "C"}, keys)
	assert.Equal(t, 2, requests)
}

func TestPaginateStopsWhenConsumerBreaks(t *testing.T) {
	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/rest/api/space", func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeJSON(t, w, http.StatusOK, Result[Space]{
			Results: []Space{{Key: "A"}, {Key: "B"}},
			Links:   Links{Next: "/rest/api/space?start=2"},
		})
	})
	c, _ := newTestClient(t, mux)

	for space, err := range c.Spaces().All(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, "A", space.Key)
		break
	}
	assert.Equal(t, 1, requests)
}

func TestPaginateYieldsErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/rest/api/space", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c, _ := newTestClient(t, mux)

	count := 0
	for space, err := range c.Spaces().All(context.Background()) {
		count++
		assert.Nil(t, space)
		var apiErr *APIError
		assert.ErrorAs(t, err, &apiErr)
	}
	assert.Equal(t, 1, count)
}

func TestContextCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wiki/rest/api/user/current", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, User{})
	})
	c, _ := newTestClient(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Users().GetCurrentUser(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
