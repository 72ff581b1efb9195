package confluence

import (
	"context"
	"io"
	"iter"
	"net/url"
)

// ConfluenceClient defines the interface for Confluence operations, grouped
// by domain.
type ConfluenceClient interface {
	Contents() ContentAPI
	Spaces() SpaceAPI
	Users() UserAPI
	Groups() GroupAPI
	Attachments() AttachmentAPI
	Misc() MiscAPI
}

type ContentAPI interface {
	Get(ctx context.Context, id string, expand ...string) (*Content, error)
	FindByTitle(ctx context.Context, spaceKey, title string, contentType ContentType) (*Content, error)
	Search(ctx context.Context, details SearchDetails) (*Result[Content], error)
	SearchAll(ctx context.Context, details SearchDetails) iter.Seq2[*Content, error]
	Create(ctx context.Context, contentType ContentType, title, spaceKey, body, parentID string) (*Content, error)
	Update(ctx context.Context, content *Content) (*Content, error)
	Delete(ctx context.Context, id string, isTrashed bool) error
	GetChildren(ctx context.Context, id string, paging *PagingInformation) (*Result[Content], error)
	Children(ctx context.Context, id string) iter.Seq2[*Content, error]
	GetAncestors(ctx context.Context, id string) ([]Content, error)
	GetHistory(ctx context.Context, id string) (*History, error)
	GetLabels(ctx context.Context, id string) (*Result[Label], error)
	AddLabels(ctx context.Context, id string, labels ...string) (*Result[Label], error)
	DeleteLabel(ctx context.Context, id, label string) error
	CreateWebUIURL(links Links) (*url.URL, error)
}

type SpaceAPI interface {
	Get(ctx context.Context, key string) (*Space, error)
	GetAll(ctx context.Context, paging *PagingInformation) (*Result[Space], error)
	All(ctx context.Context) iter.Seq2[*Space, error]
	GetContents(ctx context.Context, key string) (*SpaceContents, error)
	Create(ctx context.Context, key, name, description string) (*Space, error)
	CreatePrivate(ctx context.Context, key, name, description string) (*Space, error)
	Delete(ctx context.Context, key string) (*LongRunningTask, error)
}

type UserAPI interface {
	GetCurrentUser(ctx context.Context) (*User, error)
	GetAnonymousUser(ctx context.Context) (*User, error)
	GetUser(ctx context.Context, accountID string) (*User, error)
	GetGroupMemberships(ctx context.Context, accountID string, paging *PagingInformation) (*Result[Group], error)
	AddContentWatcher(ctx context.Context, contentID, accountID string) error
	RemoveContentWatcher(ctx context.Context, contentID, accountID string) error
	IsContentWatcher(ctx context.Context, contentID, accountID string) (bool, error)
	AddLabelWatcher(ctx context.Context, label, accountID string) error
	RemoveLabelWatcher(ctx context.Context, label, accountID string) error
	IsLabelWatcher(ctx context.Context, label, accountID string) (bool, error)
	AddSpaceWatcher(ctx context.Context, spaceKey, accountID string) error
	RemoveSpaceWatcher(ctx context.Context, spaceKey, accountID string) error
	IsSpaceWatcher(ctx context.Context, spaceKey, accountID string) (bool, error)
}

type GroupAPI interface {
	GetGroups(ctx context.Context, paging *PagingInformation) (*Result[Group], error)
	GetGroupMembers(ctx context.Context, name string, paging *PagingInformation) (*Result[User], error)
}

type AttachmentAPI interface {
	GetAttachments(ctx context.Context, contentID string, paging *PagingInformation) (*Result[Attachment], error)
	All(ctx context.Context, contentID string) iter.Seq2[*Attachment, error]
	Attach(ctx context.Context, contentID string, r io.Reader, filename, comment string) (*Result[Attachment], error)
	UpdateData(ctx context.Context, contentID, attachmentID string, r io.Reader, filename, comment string) (*Attachment, error)
	Delete(ctx context.Context, attachmentID string) error
	GetContent(ctx context.Context, attachment *Attachment) (io.ReadCloser, error)
	CreateDownloadURL(links Links) (*url.URL, error)
}

type MiscAPI interface {
	GetPicture(ctx context.Context, picture Picture) (io.ReadCloser, error)
	GetSystemInfo(ctx context.Context) (*SystemInfo, error)
}

// Ensure Client implements the interfaces
var (
	_ ConfluenceClient = (*Client)(nil)
	_ ContentAPI       = (*ContentService)(nil)
	_ SpaceAPI         = (*SpaceService)(nil)
	_ UserAPI          = (*UserService)(nil)
	_ GroupAPI         = (*GroupService)(nil)
	_ AttachmentAPI    = (*AttachmentService)(nil)
	_ MiscAPI          = (*MiscService)(nil)
)
