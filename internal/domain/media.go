package domain

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// MediaKind distinguishes pre-event flyers from post-event photos.
type MediaKind string

const (
	MediaFlyer MediaKind = "flyer"
	MediaPhoto MediaKind = "photo"
)

// ParseMediaKind accepts the singular and plural spellings used by the client forms.
func ParseMediaKind(s string) (MediaKind, error) {
	switch s {
	case "flyer", "flyers":
		return MediaFlyer, nil
	case "photo", "photos":
		return MediaPhoto, nil
	}
	return "", fmt.Errorf("unknown media kind %q", s)
}

// AttachMode controls how newly uploaded files combine with the existing list.
type AttachMode string

const (
	AttachAppend    AttachMode = "append"
	AttachOverwrite AttachMode = "overwrite"
)

// ParseAttachMode parses an upload action; empty means append.
func ParseAttachMode(s string) (AttachMode, error) {
	switch s {
	case "", "append":
		return AttachAppend, nil
	case "overwrite", "replace":
		return AttachOverwrite, nil
	}
	return "", fmt.Errorf("unknown media action %q", s)
}

// Upload is a single file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// NewUpload wraps an in-memory payload as an Upload.
func NewUpload(filename, contentType string, data []byte) Upload {
	return Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// MediaStore persists uploaded files and hands back stable, storage-relative references.
// Delete of a reference that no longer exists is not an error.
type MediaStore interface {
	Save(ctx context.Context, kind MediaKind, file Upload) (ref string, err error)
	Delete(ctx context.Context, ref string) error
}

// MediaChange describes the outcome of an attach or detach before it is committed.
// Refs is the new reference list; Added were stored by this change; Removed are
// to be deleted once the new list has been persisted.
type MediaChange struct {
	Kind    MediaKind
	Refs    []string
	Added   []string
	Removed []string
}

// Changed reports whether applying the change would alter the stored list.
func (c *MediaChange) Changed() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0
}

// MediaService governs how flyers and photos are attached to and removed from events.
type MediaService interface {
	Store(ctx context.Context, kind MediaKind, files []Upload) ([]string, error)
	Attach(ctx context.Context, e *Event, kind MediaKind, files []Upload, mode AttachMode) (*MediaChange, error)
	Detach(e *Event, kind MediaKind, refs []string) *MediaChange
	Commit(ctx context.Context, c *MediaChange)
	Rollback(ctx context.Context, c *MediaChange)
	Purge(ctx context.Context, refs []string)
}
