package confluence

import (
	"context"
	"net/http"
	"net/url"
)

const defaultMembershipLimit = 200

// WatchKind selects what a watch request refers to.
type WatchKind string

const (
	WatchContent WatchKind = "content"
	WatchLabel   WatchKind = "label"
	WatchSpace   WatchKind = "space"
)

// UserService reads users and manages watches. Watch methods act on behalf
// of the authenticated user when accountID is empty.
type UserService struct {
	client *Client
}

func (s *UserService) GetCurrentUser(ctx context.Context) (*User, error) {
	return s.getUser(ctx, "get current user", endpoint("user", "current"), nil)
}

func (s *UserService) GetAnonymousUser(ctx context.Context) (*User, error) {
	return s.getUser(ctx, "get anonymous user", endpoint("user", "anonymous"), nil)
}

func (s *UserService) GetUser(ctx context.Context, accountID string) (*User, error) {
	if accountID == "" {
		return nil, invalidArgument("account id is required")
	}
	return s.getUser(ctx, "get user", "user", url.Values{"accountId": {accountID}})
}

func (s *UserService) getUser(ctx context.Context, op, path string, q url.Values) (*User, error) {
	var user User
	if err := s.client.getJSON(ctx, op, path, q, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetGroupMemberships returns one page of the groups the user belongs to,
// 200 per page unless paging says otherwise.
func (s *UserService) GetGroupMemberships(ctx context.Context, accountID string, paging *PagingInformation) (*Result[Group], error) {
	if accountID == "" {
		return nil, invalidArgument("account id is required")
	}
	q := url.Values{"accountId": {accountID}}
	paging.apply(q, defaultMembershipLimit)
	return fetchPage[Group](ctx, s.client, "get group memberships", endpoint("user", "memberof"), q)
}

func (s *UserService) AddContentWatcher(ctx context.Context, contentID, accountID string) error {
	return s.changeWatch(ctx, http.MethodPost, WatchContent, contentID, accountID)
}

func (s *UserService) RemoveContentWatcher(ctx context.Context, contentID, accountID string) error {
	return s.changeWatch(ctx, http.MethodDelete, WatchContent, contentID, accountID)
}

func (s *UserService) IsContentWatcher(ctx context.Context, contentID, accountID string) (bool, error) {
	return s.isWatching(ctx, WatchContent, contentID, accountID)
}

func (s *UserService) AddLabelWatcher(ctx context.Context, label, accountID string) error {
	return s.changeWatch(ctx, http.MethodPost, WatchLabel, label, accountID)
}

func (s *UserService) RemoveLabelWatcher(ctx context.Context, label, accountID string) error {
	return s.changeWatch(ctx, http.MethodDelete, WatchLabel, label, accountID)
}

// IsLabelWatcher reports false for labels the server does not know; it
// answers those with 403.
func (s *UserService) IsLabelWatcher(ctx context.Context, label, accountID string) (bool, error) {
	return s.isWatching(ctx, WatchLabel, label, accountID, http.StatusForbidden)
}

func (s *UserService) AddSpaceWatcher(ctx context.Context, spaceKey, accountID string) error {
	return s.changeWatch(ctx, http.MethodPost, WatchSpace, spaceKey, accountID)
}

func (s *UserService) RemoveSpaceWatcher(ctx context.Context, spaceKey, accountID string) error {
	return s.changeWatch(ctx, http.MethodDelete, WatchSpace, spaceKey, accountID)
}

func (s *UserService) IsSpaceWatcher(ctx context.Context, spaceKey, accountID string) (bool, error) {
	return s.isWatching(ctx, WatchSpace, spaceKey, accountID)
}

func watchRequest(method string, kind WatchKind, target, accountID string, accept ...int) (request, error) {
	if target == "" {
		return request{}, invalidArgument("%s to watch is required", kind)
	}
	q := url.Values{}
	if accountID != "" {
		q.Set("accountId", accountID)
	}
	return request{
		method: method,
		path:   endpoint("user", "watch", string(kind), target),
		query:  q,
		accept: accept,
	}, nil
}

func (s *UserService) changeWatch(ctx context.Context, method string, kind WatchKind, target, accountID string) error {
	r, err := watchRequest(method, kind, target, accountID, http.StatusNoContent)
	if err != nil {
		return err
	}
	op := "add " + string(kind) + " watcher"
	if method == http.MethodDelete {
		op = "remove " + string(kind) + " watcher"
	}
	resp, err := s.client.do(ctx, op, r)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// isWatching treats the extra tolerated statuses as "not watching".
func (s *UserService) isWatching(ctx context.Context, kind WatchKind, target, accountID string, tolerated ...int) (bool, error) {
	op := "check " + string(kind) + " watcher"
	r, err := watchRequest(http.MethodGet, kind, target, accountID, append([]int{http.StatusOK}, tolerated...)...)
	if err != nil {
		return false, err
	}
	resp, err := s.client.do(ctx, op, r)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var watch UserWatch
	if err := decode(op, resp, &watch); err != nil {
		return false, err
	}
	return watch.Watching, nil
}
