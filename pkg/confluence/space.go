package confluence

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
)

type SpaceService struct {
	client *Client
}

func (s *SpaceService) Get(ctx context.Context, key string) (*Space, error) {
	if key == "" {
		return nil, invalidArgument("space key is required")
	}
	q := url.Values{}
	if len(s.client.expand.Space) > 0 {
		q.Set("expand", joinExpand(s.client.expand.Space))
	}
	var space Space
	if err := s.client.getJSON(ctx, "get space", endpoint("space", key), q, &space); err != nil {
		return nil, err
	}
	return &space, nil
}

// GetAll returns one page of the spaces visible to the caller.
func (s *SpaceService) GetAll(ctx context.Context, paging *PagingInformation) (*Result[Space], error) {
	q := url.Values{}
	paging.apply(q, 0)
	return fetchPage[Space](ctx, s.client, "get spaces", "space", q)
}

// All yields every space visible to the caller.
func (s *SpaceService) All(ctx context.Context) iter.Seq2[*Space, error] {
	return paginate[Space](ctx, s.client, "get spaces", "space", nil)
}

// GetContents returns the first page of pages and blog posts in the space.
func (s *SpaceService) GetContents(ctx context.Context, key string) (*SpaceContents, error) {
	if key == "" {
		return nil, invalidArgument("space key is required")
	}
	var contents SpaceContents
	if err := s.client.getJSON(ctx, "get space contents", endpoint("space", key, "content"), nil, &contents); err != nil {
		return nil, err
	}
	return &contents, nil
}

// Create creates a global space.
func (s *SpaceService) Create(ctx context.Context, key, name, description string) (*Space, error) {
	return s.create(ctx, "create space", "space", key, name, description)
}

// CreatePrivate creates a space only the caller can see.
func (s *SpaceService) CreatePrivate(ctx context.Context, key, name, description string) (*Space, error) {
	return s.create(ctx, "create private space", endpoint("space", "_private"), key, name, description)
}

func (s *SpaceService) create(ctx context.Context, op, path, key, name, description string) (*Space, error) {
	if key == "" || name == "" {
		return nil, invalidArgument("space key and name are required")
	}
	data, err := newBody().
		Set("key", key).
		Set("name", name).
		SetIf(description != "", "description.plain.value", description).
		SetIf(description != "", "description.plain.representation", "plain").
		Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to build space body: %w", err)
	}

	var space Space
	if err := s.client.sendJSON(ctx, op, http.MethodPost, path, data, &space, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &space, nil
}

// Delete removes a space. The server deletes it in the background and
// returns the task tracking the removal.
func (s *SpaceService) Delete(ctx context.Context, key string) (*LongRunningTask, error) {
	if key == "" {
		return nil, invalidArgument("space key is required")
	}
	var task LongRunningTask
	if err := s.client.sendJSON(ctx, "delete space", http.MethodDelete, endpoint("space", key), nil, &task, http.StatusAccepted, http.StatusOK); err != nil {
		return nil, err
	}
	return &task, nil
}
