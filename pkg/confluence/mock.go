package confluence

import (
	"bytes"
	"context"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"wikiq/pkg/cql"
)

// MockClient is an in-memory implementation of ConfluenceClient for tests.
type MockClient struct {
	BaseURL string

	Pages         map[string]*Content     // content id -> content
	Children      map[string][]Content    // content id -> child pages
	PageLabels    map[string][]Label      // content id -> labels
	Histories     map[string]*History     // content id -> history
	SearchResults []Content               // returned by every search
	SpacesByKey   map[string]*Space       // space key -> space
	CurrentUser   *User                   // returned by GetCurrentUser
	UsersByID     map[string]*User        // account id -> user
	GroupList     []Group                 // returned by GetGroups
	Members       map[string][]User       // group name -> members
	Memberships   map[string][]Group      // account id -> groups
	Files         map[string][]Attachment // content id -> attachments
	FileData      map[string][]byte       // attachment id -> data
	Watches       map[string]bool         // kind:target:account -> watching
	Info          *SystemInfo

	Searches         []string // rendered CQL of every search
	CreateCalls      []string // titles created
	UpdateCalls      []string // titles updated
	DeleteCalls      []string // ids deleted
	LastUploadedFile string

	// Err, when set, is returned by every call.
	Err error

	nextID int
}

func NewMockClient() *MockClient {
	return &MockClient{
		BaseURL:     "https://example.atlassian.net/wiki",
		Pages:       make(map[string]*Content),
		Children:    make(map[string][]Content),
		PageLabels:  make(map[string][]Label),
		Histories:   make(map[string]*History),
		SpacesByKey: make(map[string]*Space),
		UsersByID:   make(map[string]*User),
		Members:     make(map[string][]User),
		Memberships: make(map[string][]Group),
		Files:       make(map[string][]Attachment),
		FileData:    make(map[string][]byte),
		Watches:     make(map[string]bool),
		nextID:      1000,
	}
}

// AddPage stores a page and returns it.
func (m *MockClient) AddPage(id, spaceKey, title, body string) *Content {
	p := &Content{
		ID:      id,
		Type:    TypePage,
		Title:   title,
		Space:   &Space{Key: spaceKey},
		Version: &Version{Number: 1},
		Body:    &Body{Storage: &Storage{Value: body, Representation: "storage"}},
		Links:   Links{WebUI: "/spaces/" + spaceKey + "/pages/" + id},
	}
	m.Pages[id] = p
	return p
}

func (m *MockClient) Contents() ContentAPI       { return mockContents{m} }
func (m *MockClient) Spaces() SpaceAPI           { return mockSpaces{m} }
func (m *MockClient) Users() UserAPI             { return mockUsers{m} }
func (m *MockClient) Groups() GroupAPI           { return mockGroups{m} }
func (m *MockClient) Attachments() AttachmentAPI { return mockAttachments{m} }
func (m *MockClient) Misc() MiscAPI              { return mockMisc{m} }

func (m *MockClient) newID() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func (m *MockClient) resolve(base, link string) (*url.URL, error) {
	if link == "" {
		return nil, invalidArgument("link is empty")
	}
	if base == "" {
		base = m.BaseURL
	}
	return url.Parse(base + link)
}

func versionNumber(v *Version) int {
	if v == nil {
		return 0
	}
	return v.Number
}

func notFound(op, what string) error {
	return &APIError{Operation: op, StatusCode: http.StatusNotFound, Reason: "Not Found", Message: what + " not found"}
}

func seq[T any](items []T, err error) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		if err != nil {
			yield(nil, err)
			return
		}
		for i := range items {
			if !yield(&items[i], nil) {
				return
			}
		}
	}
}

func page[T any](items []T) *Result[T] {
	return &Result[T]{Results: items, Size: len(items), Limit: len(items)}
}

type mockContents struct{ m *MockClient }

func (c mockContents) Get(_ context.Context, id string, _ ...string) (*Content, error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	p, ok := c.m.Pages[id]
	if !ok {
		return nil, notFound("get content", "content "+id)
	}
	return p, nil
}

func (c mockContents) FindByTitle(_ context.Context, spaceKey, title string, contentType ContentType) (*Content, error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	if contentType == "" {
		contentType = TypePage
	}
	for _, p := range c.m.Pages {
		if p.Title == title && p.Space != nil && p.Space.Key == spaceKey && p.Type == contentType {
			return p, nil
		}
	}
	return nil, nil
}

func (c mockContents) record(details SearchDetails) error {
	if c.m.Err != nil {
		return c.m.Err
	}
	if details.CQL == nil || details.CQL.Render() == "" {
		return invalidArgument("search needs a CQL query")
	}
	c.m.Searches = append(c.m.Searches, details.CQL.Render())
	return nil
}

func (c mockContents) Search(_ context.Context, details SearchDetails) (*Result[Content], error) {
	if err := c.record(details); err != nil {
		return nil, err
	}
	results := c.m.SearchResults
	if details.Limit > 0 && len(results) > details.Limit {
		results = results[:details.Limit]
	}
	return page(results), nil
}

func (c mockContents) SearchAll(_ context.Context, details SearchDetails) iter.Seq2[*Content, error] {
	return seq(c.m.SearchResults, c.record(details))
}

func (c mockContents) Create(_ context.Context, contentType ContentType, title, spaceKey, body, parentID string) (*Content, error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	p := c.m.AddPage(c.m.newID(), spaceKey, title, body)
	if contentType != "" {
		p.Type = contentType
	}
	if parent, ok := c.m.Pages[parentID]; ok {
		p.Ancestors = append(append([]Content{}, parent.Ancestors...), Content{ID: parent.ID, Title: parent.Title})
		c.m.Children[parentID] = append(c.m.Children[parentID], Content{ID: p.ID, Title: title})
	}
	c.m.CreateCalls = append(c.m.CreateCalls, title)
	return p, nil
}

func (c mockContents) Update(_ context.Context, content *Content) (*Content, error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	p, ok := c.m.Pages[content.ID]
	if !ok {
		return nil, notFound("update content", "content "+content.ID)
	}
	p.Title = content.Title
	if content.Body != nil {
		p.Body = content.Body
	}
	p.Version = &Version{Number: versionNumber(p.Version) + 1}
	c.m.UpdateCalls = append(c.m.UpdateCalls, content.Title)
	return p, nil
}

func (c mockContents) Delete(_ context.Context, id string, _ bool) error {
	if c.m.Err != nil {
		return c.m.Err
	}
	if _, ok := c.m.Pages[id]; !ok {
		return notFound("delete content", "content "+id)
	}
	delete(c.m.Pages, id)
	c.m.DeleteCalls = append(c.m.DeleteCalls, id)
	return nil
}

func (c mockContents) GetChildren(_ context.Context, id string, _ *PagingInformation) (*Result[Content], error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	return page(c.m.Children[id]), nil
}

func (c mockContents) Children(_ context.Context, id string) iter.Seq2[*Content, error] {
	return seq(c.m.Children[id], c.m.Err)
}

func (c mockContents) GetAncestors(ctx context.Context, id string) ([]Content, error) {
	p, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Ancestors, nil
}

func (c mockContents) GetHistory(_ context.Context, id string) (*History, error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	h, ok := c.m.Histories[id]
	if !ok {
		return nil, notFound("get history", "history of "+id)
	}
	return h, nil
}

func (c mockContents) GetLabels(_ context.Context, id string) (*Result[Label], error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	return page(c.m.PageLabels[id]), nil
}

func (c mockContents) AddLabels(_ context.Context, id string, labels ...string) (*Result[Label], error) {
	if c.m.Err != nil {
		return nil, c.m.Err
	}
	for _, l := range labels {
		name, err := cql.NormalizeLabel(l)
		if err != nil {
			return nil, err
		}
		c.m.PageLabels[id] = append(c.m.PageLabels[id], Label{Prefix: "global", Name: name})
	}
	return page(c.m.PageLabels[id]), nil
}

func (c mockContents) DeleteLabel(_ context.Context, id, label string) error {
	if c.m.Err != nil {
		return c.m.Err
	}
	kept := c.m.PageLabels[id][:0]
	for _, l := range c.m.PageLabels[id] {
		if l.Name != label {
			kept = append(kept, l)
		}
	}
	c.m.PageLabels[id] = kept
	return nil
}

func (c mockContents) CreateWebUIURL(links Links) (*url.URL, error) {
	return c.m.resolve(links.Base, links.WebUI)
}

type mockSpaces struct{ m *MockClient }

func (s mockSpaces) Get(_ context.Context, key string) (*Space, error) {
	if s.m.Err != nil {
		return nil, s.m.Err
	}
	sp, ok := s.m.SpacesByKey[key]
	if !ok {
		return nil, notFound("get space", "space "+key)
	}
	return sp, nil
}

func (s mockSpaces) list() []Space {
	out := make([]Space, 0, len(s.m.SpacesByKey))
	for _, sp := range s.m.SpacesByKey {
		out = append(out, *sp)
	}
	return out
}

func (s mockSpaces) GetAll(_ context.Context, _ *PagingInformation) (*Result[Space], error) {
	if s.m.Err != nil {
		return nil, s.m.Err
	}
	return page(s.list()), nil
}

func (s mockSpaces) All(_ context.Context) iter.Seq2[*Space, error] {
	return seq(s.list(), s.m.Err)
}

func (s mockSpaces) GetContents(_ context.Context, key string) (*SpaceContents, error) {
	if s.m.Err != nil {
		return nil, s.m.Err
	}
	var pages, posts []Content
	for _, p := range s.m.Pages {
		if p.Space == nil || p.Space.Key != key {
			continue
		}
		if p.Type == TypeBlogPost {
			posts = append(posts, *p)
		} else {
			pages = append(pages, *p)
		}
	}
	return &SpaceContents{Pages: page(pages), BlogPosts: page(posts)}, nil
}

func (s mockSpaces) Create(_ context.Context, key, name, description string) (*Space, error) {
	if s.m.Err != nil {
		return nil, s.m.Err
	}
	sp := &Space{Key: key, Name: name, Type: "global"}
	if description != "" {
		sp.Description = &SpaceDescription{Plain: &Storage{Value: description, Representation: "plain"}}
	}
	s.m.SpacesByKey[key] = sp
	return sp, nil
}

func (s mockSpaces) CreatePrivate(ctx context.Context, key, name, description string) (*Space, error) {
	sp, err := s.Create(ctx, key, name, description)
	if err != nil {
		return nil, err
	}
	sp.Type = "personal"
	return sp, nil
}

func (s mockSpaces) Delete(_ context.Context, key string) (*LongRunningTask, error) {
	if s.m.Err != nil {
		return nil, s.m.Err
	}
	if _, ok := s.m.SpacesByKey[key]; !ok {
		return nil, notFound("delete space", "space "+key)
	}
	delete(s.m.SpacesByKey, key)
	return &LongRunningTask{ID: "task-" + key, Links: TaskLinks{Status: "/rest/api/longtask/task-" + key}}, nil
}

type mockUsers struct{ m *MockClient }

func (u mockUsers) GetCurrentUser(_ context.Context) (*User, error) {
	if u.m.Err != nil {
		return nil, u.m.Err
	}
	if u.m.CurrentUser == nil {
		return nil, &APIError{Operation: "get current user", StatusCode: http.StatusUnauthorized, Reason: "Unauthorized"}
	}
	return u.m.CurrentUser, nil
}

func (u mockUsers) GetAnonymousUser(_ context.Context) (*User, error) {
	if u.m.Err != nil {
		return nil, u.m.Err
	}
	return &User{Type: "anonymous", DisplayName: "Anonymous"}, nil
}

func (u mockUsers) GetUser(_ context.Context, accountID string) (*User, error) {
	if u.m.Err != nil {
		return nil, u.m.Err
	}
	user, ok := u.m.UsersByID[accountID]
	if !ok {
		return nil, notFound("get user", "user "+accountID)
	}
	return user, nil
}

func (u mockUsers) GetGroupMemberships(_ context.Context, accountID string, _ *PagingInformation) (*Result[Group], error) {
	if u.m.Err != nil {
		return nil, u.m.Err
	}
	return page(u.m.Memberships[accountID]), nil
}

func watchKey(kind WatchKind, target, accountID string) string {
	return string(kind) + ":" + target + ":" + accountID
}

func (u mockUsers) setWatch(kind WatchKind, target, accountID string, watching bool) error {
	if u.m.Err != nil {
		return u.m.Err
	}
	if target == "" {
		return invalidArgument("%s to watch is required", kind)
	}
	u.m.Watches[watchKey(kind, target, accountID)] = watching
	return nil
}

func (u mockUsers) watching(kind WatchKind, target, accountID string) (bool, error) {
	if u.m.Err != nil {
		return false, u.m.Err
	}
	return u.m.Watches[watchKey(kind, target, accountID)], nil
}

func (u mockUsers) AddContentWatcher(_ context.Context, contentID, accountID string) error {
	return u.setWatch(WatchContent, contentID, accountID, true)
}

func (u mockUsers) RemoveContentWatcher(_ context.Context, contentID, accountID string) error {
	return u.setWatch(WatchContent, contentID, accountID, false)
}

func (u mockUsers) IsContentWatcher(_ context.Context, contentID, accountID string) (bool, error) {
	return u.watching(WatchContent, contentID, accountID)
}

func (u mockUsers) AddLabelWatcher(_ context.Context, label, accountID string) error {
	return u.setWatch(WatchLabel, label, accountID, true)
}

func (u mockUsers) RemoveLabelWatcher(_ context.Context, label, accountID string) error {
	return u.setWatch(WatchLabel, label, accountID, false)
}

func (u mockUsers) IsLabelWatcher(_ context.Context, label, accountID string) (bool, error) {
	return u.watching(WatchLabel, label, accountID)
}

func (u mockUsers) AddSpaceWatcher(_ context.Context, spaceKey, accountID string) error {
	return u.setWatch(WatchSpace, spaceKey, accountID, true)
}

func (u mockUsers) RemoveSpaceWatcher(_ context.Context, spaceKey, accountID string) error {
	return u.setWatch(WatchSpace, spaceKey, accountID, false)
}

func (u mockUsers) IsSpaceWatcher(_ context.Context, spaceKey, accountID string) (bool, error) {
	return u.watching(WatchSpace, spaceKey, accountID)
}

type mockGroups struct{ m *MockClient }

func (g mockGroups) GetGroups(_ context.Context, _ *PagingInformation) (*Result[Group], error) {
	if g.m.Err != nil {
		return nil, g.m.Err
	}
	return page(g.m.GroupList), nil
}

func (g mockGroups) GetGroupMembers(_ context.Context, name string, _ *PagingInformation) (*Result[User], error) {
	if g.m.Err != nil {
		return nil, g.m.Err
	}
	return page(g.m.Members[name]), nil
}

type mockAttachments struct{ m *MockClient }

func (a mockAttachments) GetAttachments(_ context.Context, contentID string, _ *PagingInformation) (*Result[Attachment], error) {
	if a.m.Err != nil {
		return nil, a.m.Err
	}
	return page(a.m.Files[contentID]), nil
}

func (a mockAttachments) All(_ context.Context, contentID string) iter.Seq2[*Attachment, error] {
	return seq(a.m.Files[contentID], a.m.Err)
}

func (a mockAttachments) Attach(_ context.Context, contentID string, r io.Reader, filename, comment string) (*Result[Attachment], error) {
	if a.m.Err != nil {
		return nil, a.m.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	att := Attachment{
		ID:         "att" + a.m.newID(),
		Type:       string(TypeAttachment),
		Title:      filename,
		Version:    &Version{Number: 1},
		Extensions: Extensions{FileSize: int64(len(data)), Comment: comment},
	}
	att.Links.Download = "/download/attachments/" + contentID + "/" + url.PathEscape(filename)
	a.m.Files[contentID] = append(a.m.Files[contentID], att)
	a.m.FileData[att.ID] = data
	a.m.LastUploadedFile = filename
	return page([]Attachment{att}), nil
}

func (a mockAttachments) UpdateData(_ context.Context, contentID, attachmentID string, r io.Reader, filename, _ string) (*Attachment, error) {
	if a.m.Err != nil {
		return nil, a.m.Err
	}
	for i := range a.m.Files[contentID] {
		att := &a.m.Files[contentID][i]
		if att.ID != attachmentID {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		att.Version = &Version{Number: versionNumber(att.Version) + 1}
		att.Extensions.FileSize = int64(len(data))
		a.m.FileData[att.ID] = data
		a.m.LastUploadedFile = filename
		return att, nil
	}
	return nil, notFound("update attachment", "attachment "+attachmentID)
}

func (a mockAttachments) Delete(_ context.Context, attachmentID string) error {
	if a.m.Err != nil {
		return a.m.Err
	}
	for id, files := range a.m.Files {
		for i, att := range files {
			if att.ID == attachmentID {
				a.m.Files[id] = append(files[:i], files[i+1:]...)
				delete(a.m.FileData, attachmentID)
				return nil
			}
		}
	}
	return notFound("delete attachment", "attachment "+attachmentID)
}

func (a mockAttachments) GetContent(_ context.Context, attachment *Attachment) (io.ReadCloser, error) {
	if a.m.Err != nil {
		return nil, a.m.Err
	}
	data, ok := a.m.FileData[attachment.ID]
	if !ok {
		return nil, notFound("download attachment", "attachment "+attachment.ID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a mockAttachments) CreateDownloadURL(links Links) (*url.URL, error) {
	return a.m.resolve(links.Base, links.Download)
}

type mockMisc struct{ m *MockClient }

func (x mockMisc) GetPicture(_ context.Context, picture Picture) (io.ReadCloser, error) {
	if x.m.Err != nil {
		return nil, x.m.Err
	}
	return io.NopCloser(bytes.NewReader([]byte(picture.Path))), nil
}

func (x mockMisc) GetSystemInfo(_ context.Context) (*SystemInfo, error) {
	if x.m.Err != nil {
		return nil, x.m.Err
	}
	return x.m.Info, nil
}

var _ ConfluenceClient = (*MockClient)(nil)
