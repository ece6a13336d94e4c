package services

import (
	"context"
	"log/slog"
	"slices"

	"eventboard/internal/domain"
	"eventboard/internal/metrics"
)

type mediaService struct {
	store  domain.MediaStore
	logger *slog.Logger
}

// NewMediaService returns a MediaService backed by store. Cleanup failures are logged, never returned.
func NewMediaService(store domain.MediaStore, logger *slog.Logger) domain.MediaService {
	return &mediaService{store: store, logger: logger}
}

// Store saves files in order. If any save fails, the files already saved by this
// call are removed and a StorageError is returned.
func (s *mediaService) Store(ctx context.Context, kind domain.MediaKind, files []domain.Upload) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.store.Save(ctx, kind, f)
		if err != nil {
			metrics.RecordMediaStoreFailed(string(kind))
			s.Purge(context.WithoutCancel(ctx), refs)
			return nil, &domain.StorageError{Op: "save", Ref: f.Filename, Err: err}
		}
		metrics.RecordMediaStored(string(kind))
		refs = append(refs, ref)
	}
	return refs, nil
}

// Attach stores files and computes the new reference list of kind for e.
// e is not modified; nothing is deleted until the change is committed.
func (s *mediaService) Attach(ctx context.Context, e *domain.Event, kind domain.MediaKind, files []domain.Upload, mode domain.AttachMode) (*domain.MediaChange, error) {
	if mode != domain.AttachAppend && mode != domain.AttachOverwrite {
		return nil, domain.NewValidationError("action", "must be append or overwrite")
	}
	if mode == domain.AttachAppend {
		files = dedupByFilename(files)
	}
	added, err := s.Store(ctx, kind, files)
	if err != nil {
		return nil, err
	}

	existing := e.References(kind)
	change := &domain.MediaChange{Kind: kind, Added: added}
	if mode == domain.AttachOverwrite {
		change.Refs = slices.Clone(added)
		change.Removed = slices.Clone(existing)
	} else {
		change.Refs = append(slices.Clone(existing), added...)
	}
	if change.Refs == nil {
		change.Refs = []string{}
	}
	return change, nil
}

// Detach removes the given references of kind from e's list. References e does not
// hold are ignored.
func (s *mediaService) Detach(e *domain.Event, kind domain.MediaKind, refs []string) *domain.MediaChange {
	drop := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		drop[r] = struct{}{}
	}
	change := &domain.MediaChange{Kind: kind, Refs: []string{}}
	for _, r := range e.References(kind) {
		if _, ok := drop[r]; ok {
			change.Removed = append(change.Removed, r)
			continue
		}
		change.Refs = append(change.Refs, r)
	}
	return change
}

// Commit deletes the files a persisted change no longer references.
func (s *mediaService) Commit(ctx context.Context, c *domain.MediaChange) {
	if c == nil {
		return
	}
	s.Purge(ctx, c.Removed)
}

// Rollback deletes the files a change stored when the change could not be persisted.
func (s *mediaService) Rollback(ctx context.Context, c *domain.MediaChange) {
	if c == nil {
		return
	}
	s.Purge(ctx, c.Added)
}

func (s *mediaService) Purge(ctx context.Context, refs []string) {
	for _, ref := range refs {
		err := s.store.Delete(ctx, ref)
		metrics.RecordMediaDeleted(err == nil)
		if err != nil {
			s.logger.WarnContext(ctx, "media cleanup failed", "ref", ref, "err", err)
		}
	}
}

// dedupByFilename keeps the first upload of every original filename.
func dedupByFilename(files []domain.Upload) []domain.Upload {
	seen := make(map[string]struct{}, len(files))
	out := make([]domain.Upload, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f.Filename]; ok {
			continue
		}
		seen[f.Filename] = struct{}{}
		out = append(out, f)
	}
	return out
}
