package confluence

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"wikiq/pkg/cql"
)

// ContentType is the kind of a piece of content.
type ContentType = cql.ContentType

const (
	TypePage       = cql.TypePage
	TypeBlogPost   = cql.TypeBlogPost
	TypeAttachment = cql.TypeAttachment
	TypeComment    = cql.TypeComment
)

// Links holds the _links object found on most entities. Relative links are
// relative to Base, which includes the context path (/wiki on cloud).
type Links struct {
	Base     string `json:"base,omitempty"`
	Context  string `json:"context,omitempty"`
	Self     string `json:"self,omitempty"`
	WebUI    string `json:"webui,omitempty"`
	TinyUI   string `json:"tinyui,omitempty"`
	EditUI   string `json:"editui,omitempty"`
	Download string `json:"download,omitempty"`
	Next     string `json:"next,omitempty"`
	Prev     string `json:"prev,omitempty"`
}

// Picture is a profile picture or space icon.
type Picture struct {
	Path      string `json:"path"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

type User struct {
	AccountID      string   `json:"accountId"`
	AccountType    string   `json:"accountType,omitempty"`
	Type           string   `json:"type,omitempty"`
	Username       string   `json:"username,omitempty"`
	UserKey        string   `json:"userKey,omitempty"`
	DisplayName    string   `json:"displayName,omitempty"`
	PublicName     string   `json:"publicName,omitempty"`
	Email          string   `json:"email,omitempty"`
	ProfilePicture *Picture `json:"profilePicture,omitempty"`
	PersonalSpace  *Space   `json:"personalSpace,omitempty"`
	Links          Links    `json:"_links,omitempty"`
}

type Group struct {
	Type  string `json:"type,omitempty"`
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	Links Links  `json:"_links,omitempty"`
}

type SpaceDescription struct {
	Plain *Storage `json:"plain,omitempty"`
}

type Space struct {
	ID          int64             `json:"id,omitempty"`
	Key         string            `json:"key"`
	Name        string            `json:"name,omitempty"`
	Type        string            `json:"type,omitempty"`
	Status      string            `json:"status,omitempty"`
	Icon        *Picture          `json:"icon,omitempty"`
	Description *SpaceDescription `json:"description,omitempty"`
	Links       Links             `json:"_links,omitempty"`
}

// Storage is one representation of a content body.
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation,omitempty"`
}

type Body struct {
	Storage *Storage `json:"storage,omitempty"`
	View    *Storage `json:"view,omitempty"`
}

type Version struct {
	Number    int       `json:"number"`
	When      time.Time `json:"when,omitempty"`
	Message   string    `json:"message,omitempty"`
	MinorEdit bool      `json:"minorEdit,omitempty"`
	By        *User     `json:"by,omitempty"`
}

type History struct {
	Latest      bool      `json:"latest"`
	CreatedBy   *User     `json:"createdBy,omitempty"`
	CreatedDate time.Time `json:"createdDate,omitempty"`
	LastUpdated *Version  `json:"lastUpdated,omitempty"`
}

type Label struct {
	ID     string `json:"id,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Name   string `json:"name"`
	Label  string `json:"label,omitempty"`
}

type Metadata struct {
	Labels    *Result[Label] `json:"labels,omitempty"`
	MediaType string         `json:"mediaType,omitempty"`
	Comment   string         `json:"comment,omitempty"`
}

// Content is a page, blog post, comment or attachment.
type Content struct {
	ID        string      `json:"id,omitempty"`
	Type      ContentType `json:"type,omitempty"`
	Status    string      `json:"status,omitempty"`
	Title     string      `json:"title"`
	Space     *Space      `json:"space,omitempty"`
	History   *History    `json:"history,omitempty"`
	Version   *Version    `json:"version,omitempty"`
	Ancestors []Content   `json:"ancestors,omitempty"`
	Body      *Body       `json:"body,omitempty"`
	Metadata  *Metadata   `json:"metadata,omitempty"`
	Links     Links       `json:"_links,omitempty"`
}

// StorageValue returns the storage format body or "" when it was not
// expanded.
func (c *Content) StorageValue() string {
	if c == nil || c.Body == nil || c.Body.Storage == nil {
		return ""
	}
	return c.Body.Storage.Value
}

// Parent returns the direct parent, the last ancestor, or nil.
func (c *Content) Parent() *Content {
	if c == nil || len(c.Ancestors) == 0 {
		return nil
	}
	return &c.Ancestors[len(c.Ancestors)-1]
}

// Extensions carries the attachment specific fields.
type Extensions struct {
	MediaType string `json:"mediaType,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

type Attachment struct {
	ID         string     `json:"id"`
	Type       string     `json:"type,omitempty"`
	Status     string     `json:"status,omitempty"`
	Title      string     `json:"title"`
	Version    *Version   `json:"version,omitempty"`
	Container  *Content   `json:"container,omitempty"`
	Metadata   *Metadata  `json:"metadata,omitempty"`
	Extensions Extensions `json:"extensions,omitempty"`
	Links      Links      `json:"_links,omitempty"`
}

// SpaceContents is the answer of the space content endpoint, grouped by type.
type SpaceContents struct {
	Pages     *Result[Content] `json:"page,omitempty"`
	BlogPosts *Result[Content] `json:"blogpost,omitempty"`
}

type UserWatch struct {
	Watching bool `json:"watching"`
}

type SystemInfo struct {
	CloudID    string `json:"cloudId,omitempty"`
	CommitHash string `json:"commitHash,omitempty"`
	BaseURL    string `json:"baseUrl,omitempty"`
	Edition    string `json:"edition,omitempty"`
	SiteTitle  string `json:"siteTitle,omitempty"`
}

// LongRunningTask is returned by operations the server completes
// asynchronously, such as deleting a space.
type LongRunningTask struct {
	ID    string    `json:"id"`
	Links TaskLinks `json:"links,omitempty"`
}

// TaskLinks points at the resource reporting the progress of a task.
type TaskLinks struct {
	Status string `json:"status,omitempty"`
}

// Result is one page of a paged collection.
type Result[T any] struct {
	Results   []T   `json:"results"`
	Start     int   `json:"start"`
	Limit     int   `json:"limit"`
	Size      int   `json:"size"`
	TotalSize int   `json:"totalSize,omitempty"`
	Links     Links `json:"_links,omitempty"`
}

// HasNext reports whether the server announced another page.
func (r *Result[T]) HasNext() bool {
	return r != nil && r.Links.Next != ""
}

// PagingInformation selects a window of a paged collection. Zero values
// leave the choice to the client defaults and the server.
type PagingInformation struct {
	Start int
	Limit int
}

func (p *PagingInformation) apply(q url.Values, defaultLimit int) {
	limit := defaultLimit
	if p != nil {
		if p.Start > 0 {
			q.Set("start", strconv.Itoa(p.Start))
		}
		if p.Limit > 0 {
			limit = p.Limit
		}
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

// SearchDetails describes a CQL search.
type SearchDetails struct {
	PagingInformation

	// CQL is the query, typically built with the cql package.
	CQL cql.Expr

	// CQLContext is the JSON context some CQL functions need, e.g.
	// {"spaceKey":"DEV"}.
	CQLContext string

	// Expand overrides the search expand configured on the client.
	Expand []string
}

// Expand lists the properties the server should inline per kind of request.
type Expand struct {
	Search  []string
	Content []string
	Space   []string
}

// DefaultExpand returns the expand values used by a client that was not
// given any.
func DefaultExpand() Expand {
	return Expand{
		Search:  []string{"version", "space"},
		Content: []string{"body.storage", "version", "space", "ancestors"},
		Space:   []string{"description.plain", "icon"},
	}
}

func joinExpand(values []string) string {
	return strings.Join(values, ",")
}
