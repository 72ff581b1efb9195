package confluence

import (
	"context"
	"io"
	"net/http"
	"strings"
)

type MiscService struct {
	client *Client
}

// GetPicture downloads a profile picture or space icon. The caller closes
// the returned reader.
func (s *MiscService) GetPicture(ctx context.Context, picture Picture) (io.ReadCloser, error) {
	if picture.Path == "" {
		return nil, invalidArgument("picture has no path")
	}
	// Picture paths already carry the context path, so they hang off the
	// server root rather than the base URL.
	path := picture.Path
	if !strings.HasPrefix(path, "/") && !strings.Contains(path, "://") {
		path = "/" + path
	}
	resp, err := s.client.do(ctx, "get picture", request{
		method: http.MethodGet,
		path:   path,
		header: http.Header{"Accept": {"image/*"}},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetSystemInfo returns nil without error on servers that do not expose the
// endpoint.
func (s *MiscService) GetSystemInfo(ctx context.Context) (*SystemInfo, error) {
	resp, err := s.client.do(ctx, "get system info", request{
		method: http.MethodGet,
		path:   endpoint("settings", "systemInfo"),
		accept: []int{http.StatusOK, http.StatusNotFound},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	var info SystemInfo
	if err := decode("get system info", resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
