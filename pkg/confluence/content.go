package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"wikiq/pkg/cql"
)

// ContentService covers pages, blog posts and their labels, children and
// history.
type ContentService struct {
	client *Client
}

// Get fetches one piece of content. Without expand values the client's
// content expand is used.
func (s *ContentService) Get(ctx context.Context, id string, expand ...string) (*Content, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidArgument("content id is required")
	}
	if len(expand) == 0 {
		expand = s.client.expand.Content
	}
	q := url.Values{}
	if len(expand) > 0 {
		q.Set("expand", joinExpand(expand))
	}

	var content Content
	if err := s.client.getJSON(ctx, "get content", endpoint("content", id), q, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// FindByTitle returns the content of the given type with exactly this title
// in the space, or nil when there is none. An empty type means page.
func (s *ContentService) FindByTitle(ctx context.Context, spaceKey, title string, contentType ContentType) (*Content, error) {
	if spaceKey == "" || title == "" {
		return nil, invalidArgument("space key and title are required")
	}
	if contentType == "" {
		contentType = TypePage
	}
	if !contentType.Valid() {
		return nil, invalidArgument("unknown content type %q", contentType)
	}
	q := url.Values{}
	q.Set("spaceKey", spaceKey)
	q.Set("title", title)
	q.Set("type", string(contentType))
	if len(s.client.expand.Content) > 0 {
		q.Set("expand", joinExpand(s.client.expand.Content))
	}

	result, err := fetchPage[Content](ctx, s.client, "find content by title", "content", q)
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}

func (s *ContentService) searchQuery(details SearchDetails) (url.Values, error) {
	if details.CQL == nil {
		return nil, invalidArgument("search needs a CQL query")
	}
	query := details.CQL.Render()
	if strings.TrimSpace(query) == "" {
		return nil, invalidArgument("search needs a CQL query")
	}

	q := url.Values{}
	q.Set("cql", query)
	if details.CQLContext != "" {
		q.Set("cqlcontext", details.CQLContext)
	}
	expand := details.Expand
	if expand == nil {
		expand = s.client.expand.Search
	}
	if len(expand) > 0 {
		q.Set("expand", joinExpand(expand))
	}
	details.PagingInformation.apply(q, 0)
	return q, nil
}

// Search runs a CQL query and returns one page of results.
func (s *ContentService) Search(ctx context.Context, details SearchDetails) (*Result[Content], error) {
	q, err := s.searchQuery(details)
	if err != nil {
		return nil, err
	}
	return fetchPage[Content](ctx, s.client, "search content", "content/search", q)
}

// SearchAll runs a CQL query and yields every match across all pages.
func (s *ContentService) SearchAll(ctx context.Context, details SearchDetails) iter.Seq2[*Content, error] {
	q, err := s.searchQuery(details)
	if err != nil {
		return func(yield func(*Content, error) bool) { yield(nil, err) }
	}
	return paginate[Content](ctx, s.client, "search content", "content/search", q)
}

// Create stores new content in storage format. parentID may be empty.
func (s *ContentService) Create(ctx context.Context, contentType ContentType, title, spaceKey, body, parentID string) (*Content, error) {
	if contentType == "" {
		contentType = TypePage
	}
	if !contentType.Valid() {
		return nil, invalidArgument("unknown content type %q", contentType)
	}
	if strings.TrimSpace(title) == "" || spaceKey == "" {
		return nil, invalidArgument("title and space key are required")
	}

	data, err := newBody().
		Set("type", string(contentType)).
		Set("title", title).
		Set("space.key", spaceKey).
		Set("body.storage.value", body).
		Set("body.storage.representation", "storage").
		SetIf(parentID != "", "ancestors", []map[string]string{{"id": parentID}}).
		Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to build content body: %w", err)
	}

	s.client.logger.Debug("Creating %s '%s' in space %s", contentType, title, spaceKey)

	var created Content
	if err := s.client.sendJSON(ctx, "create content", http.MethodPost, "content", data, &created, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update stores a new version of content. content.Version holds the version
// being replaced; when it is unset the current version is fetched first.
func (s *ContentService) Update(ctx context.Context, content *Content) (*Content, error) {
	if content == nil || content.ID == "" {
		return nil, invalidArgument("content with an id is required")
	}

	current := 0
	if content.Version != nil {
		current = content.Version.Number
	}
	if current == 0 {
		existing, err := s.Get(ctx, content.ID, "version")
		if err != nil {
			return nil, fmt.Errorf("failed to get current content version: %w", err)
		}
		if existing.Version != nil {
			current = existing.Version.Number
		}
	}

	contentType := content.Type
	if contentType == "" {
		contentType = TypePage
	}

	b := newBody().
		Set("id", content.ID).
		Set("type", string(contentType)).
		Set("title", content.Title).
		Set("version.number", current+1).
		SetIf(content.Space != nil && content.Space.Key != "", "space.key", spaceKey(content.Space))
	if content.Body != nil && content.Body.Storage != nil {
		b = b.Set("body.storage.value", content.Body.Storage.Value).
			Set("body.storage.representation", "storage")
	}
	if parent := content.Parent(); parent != nil && parent.ID != "" {
		b = b.Set("ancestors", []map[string]string{{"id": parent.ID}})
	}
	data, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to build content body: %w", err)
	}

	var updated Content
	err = s.client.sendJSON(ctx, "update content", http.MethodPut, endpoint("content", content.ID), data, &updated)
	if IsForbidden(err) {
		return nil, &UpdateForbiddenError{
			ContentID: content.ID,
			Title:     content.Title,
			Msg:       fmt.Sprintf("not allowed to update '%s' (%s): %v", content.Title, content.ID, err),
		}
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func spaceKey(s *Space) string {
	if s == nil {
		return ""
	}
	return s.Key
}

// Delete moves content to the trash. With isTrashed set it purges content
// that is already trashed.
func (s *ContentService) Delete(ctx context.Context, id string, isTrashed bool) error {
	if id == "" {
		return invalidArgument("content id is required")
	}
	q := url.Values{}
	if isTrashed {
		q.Set("status", "trashed")
	}
	resp, err := s.client.do(ctx, "delete content", request{
		method: http.MethodDelete,
		path:   endpoint("content", id),
		query:  q,
		accept: []int{http.StatusNoContent, http.StatusOK},
	})
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// GetChildren returns one page of the child pages of id.
func (s *ContentService) GetChildren(ctx context.Context, id string, paging *PagingInformation) (*Result[Content], error) {
	if id == "" {
		return nil, invalidArgument("content id is required")
	}
	q := url.Values{}
	paging.apply(q, 0)
	return fetchPage[Content](ctx, s.client, "get children", endpoint("content", id, "child", "page"), q)
}

// Children yields every child page of id.
func (s *ContentService) Children(ctx context.Context, id string) iter.Seq2[*Content, error] {
	if id == "" {
		return func(yield func(*Content, error) bool) { yield(nil, invalidArgument("content id is required")) }
	}
	return paginate[Content](ctx, s.client, "get children", endpoint("content", id, "child", "page"), nil)
}

// GetAncestors returns the ancestors of id, root first.
func (s *ContentService) GetAncestors(ctx context.Context, id string) ([]Content, error) {
	content, err := s.Get(ctx, id, "ancestors")
	if err != nil {
		return nil, err
	}
	return content.Ancestors, nil
}

func (s *ContentService) GetHistory(ctx context.Context, id string) (*History, error) {
	if id == "" {
		return nil, invalidArgument("content id is required")
	}
	var history History
	if err := s.client.getJSON(ctx, "get history", endpoint("content", id, "history"), nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

func (s *ContentService) GetLabels(ctx context.Context, id string) (*Result[Label], error) {
	if id == "" {
		return nil, invalidArgument("content id is required")
	}
	return fetchPage[Label](ctx, s.client, "get labels", endpoint("content", id, "label"), nil)
}

// AddLabels attaches global labels to content and returns the resulting
// label set.
func (s *ContentService) AddLabels(ctx context.Context, id string, labels ...string) (*Result[Label], error) {
	if id == "" {
		return nil, invalidArgument("content id is required")
	}
	if len(labels) == 0 {
		return nil, invalidArgument("at least one label is required")
	}
	payload := make([]Label, 0, len(labels))
	for _, l := range labels {
		name, err := cql.NormalizeLabel(l)
		if err != nil {
			return nil, err
		}
		payload = append(payload, Label{Prefix: "global", Name: name})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal labels: %w", err)
	}

	var result Result[Label]
	if err := s.client.sendJSON(ctx, "add labels", http.MethodPost, endpoint("content", id, "label"), data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ContentService) DeleteLabel(ctx context.Context, id, label string) error {
	if id == "" || label == "" {
		return invalidArgument("content id and label are required")
	}
	return s.client.sendJSON(ctx, "delete label", http.MethodDelete, endpoint("content", id, "label", label), nil, nil, http.StatusNoContent, http.StatusOK)
}

// CreateWebUIURL returns the browser URL of content from its links.
func (s *ContentService) CreateWebUIURL(links Links) (*url.URL, error) {
	if links.WebUI == "" {
		return nil, invalidArgument("content has no webui link")
	}
	return s.client.resolveLink(links.Base, links.WebUI)
}
