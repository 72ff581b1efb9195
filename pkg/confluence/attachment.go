package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/tidwall/gjson"
)

type AttachmentService struct {
	client *Client
}

// GetAttachments returns one page of the attachments of a piece of content.
func (s *AttachmentService) GetAttachments(ctx context.Context, contentID string, paging *PagingInformation) (*Result[Attachment], error) {
	if contentID == "" {
		return nil, invalidArgument("content id is required")
	}
	q := url.Values{"expand": {"version,container"}}
	paging.apply(q, 0)
	return fetchPage[Attachment](ctx, s.client, "get attachments", endpoint("content", contentID, "child", "attachment"), q)
}

// All yields every attachment of a piece of content.
func (s *AttachmentService) All(ctx context.Context, contentID string) iter.Seq2[*Attachment, error] {
	if contentID == "" {
		return func(yield func(*Attachment, error) bool) { yield(nil, invalidArgument("content id is required")) }
	}
	return paginate[Attachment](ctx, s.client, "get attachments", endpoint("content", contentID, "child", "attachment"), nil)
}

// Attach uploads r as a new attachment named filename. Confluence rejects a
// second attachment with the same name; use UpdateData for new versions.
func (s *AttachmentService) Attach(ctx context.Context, contentID string, r io.Reader, filename, comment string) (*Result[Attachment], error) {
	if contentID == "" {
		return nil, invalidArgument("content id is required")
	}
	return s.upload(ctx, "attach", endpoint("content", contentID, "child", "attachment"), r, filename, comment)
}

// UpdateData uploads a new version of an existing attachment.
func (s *AttachmentService) UpdateData(ctx context.Context, contentID, attachmentID string, r io.Reader, filename, comment string) (*Attachment, error) {
	if contentID == "" || attachmentID == "" {
		return nil, invalidArgument("content id and attachment id are required")
	}
	result, err := s.upload(ctx, "update attachment", endpoint("content", contentID, "child", "attachment", attachmentID, "data"), r, filename, comment)
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("update attachment returned no attachment")
	}
	return &result.Results[0], nil
}

func (s *AttachmentService) upload(ctx context.Context, op, path string, r io.Reader, filename, comment string) (*Result[Attachment], error) {
	if r == nil {
		return nil, invalidArgument("attachment content is required")
	}
	if filename == "" {
		return nil, invalidArgument("attachment file name is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to copy attachment content: %w", err)
	}
	if comment != "" {
		if err := w.WriteField("comment", comment); err != nil {
			return nil, fmt.Errorf("failed to write comment: %w", err)
		}
	}
	if err := w.WriteField("minorEdit", "true"); err != nil {
		return nil, fmt.Errorf("failed to write minorEdit: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	resp, err := s.client.do(ctx, op, request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
		header:      http.Header{"X-Atlassian-Token": {"nocheck"}},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The data endpoint answers with the attachment itself, the collection
	// endpoint with a result page.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}
	return decodeAttachments(op, raw)
}

func decodeAttachments(op string, raw []byte) (*Result[Attachment], error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("failed to decode %s response: invalid JSON", op)
	}
	if gjson.GetBytes(raw, "results").Exists() {
		var result Result[Attachment]
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
		}
		return &result, nil
	}
	var attachment Attachment
	if err := json.Unmarshal(raw, &attachment); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return &Result[Attachment]{Results: []Attachment{attachment}, Size: 1}, nil
}

// Delete moves an attachment to the trash.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID string) error {
	if attachmentID == "" {
		return invalidArgument("attachment id is required")
	}
	return s.client.sendJSON(ctx, "delete attachment", http.MethodDelete, endpoint("content", attachmentID), nil, nil, http.StatusNoContent, http.StatusOK)
}

// GetContent downloads the attachment data. The caller closes the returned
// reader.
func (s *AttachmentService) GetContent(ctx context.Context, attachment *Attachment) (io.ReadCloser, error) {
	if attachment == nil {
		return nil, invalidArgument("attachment is required")
	}
	u, err := s.CreateDownloadURL(attachment.Links)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.do(ctx, "download attachment", request{
		method: http.MethodGet,
		path:   u.String(),
		header: http.Header{"Accept": {"*/*"}},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CreateDownloadURL returns the absolute download URL from attachment links.
func (s *AttachmentService) CreateDownloadURL(links Links) (*url.URL, error) {
	if links.Download == "" {
		return nil, invalidArgument("attachment has no download link")
	}
	return s.client.resolveLink(links.Base, links.Download)
}
