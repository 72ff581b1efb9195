package confluence

import (
	"context"
	"net/url"
)

const defaultGroupLimit = 200

type GroupService struct {
	client *Client
}

// GetGroups returns one page of groups, 200 per page unless paging says
// otherwise.
func (s *GroupService) GetGroups(ctx context.Context, paging *PagingInformation) (*Result[Group], error) {
	q := url.Values{}
	paging.apply(q, defaultGroupLimit)
	return fetchPage[Group](ctx, s.client, "get groups", "group", q)
}

func (s *GroupService) GetGroupMembers(ctx context.Context, name string, paging *PagingInformation) (*Result[User], error) {
	if name == "" {
		return nil, invalidArgument("group name is required")
	}
	q := url.Values{}
	paging.apply(q, defaultGroupLimit)
	return fetchPage[User](ctx, s.client, "get group members", endpoint("group", name, "member"), q)
}
