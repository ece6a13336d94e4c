package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventboard/internal/domain"
)

// EventServiceOptions configures the lifecycle service. Zero values fall back to
// UTC, time.Now and a 10s timeout; announcements are off without Email and AnnounceTo.
type EventServiceOptions struct {
	Location       *time.Location
	ContextTimeout time.Duration
	Now            func() time.Time
	Email          domain.EmailService
	AnnounceTo     string
	MediaBaseURL   string
}

type eventService struct {
	repo           domain.EventRepository
	media          domain.MediaService
	email          domain.EmailService
	validate       *fieldValidator
	logger         *slog.Logger
	loc            *time.Location
	now            func() time.Time
	announceTo     string
	mediaBaseURL   string
	contextTimeout time.Duration
}

func NewEventService(repo domain.EventRepository, media domain.MediaService, logger *slog.Logger, opts EventServiceOptions) domain.EventService {
	s := &eventService{
		repo:           repo,
		media:          media,
		email:          opts.Email,
		validate:       newFieldValidator(),
		logger:         logger,
		loc:            opts.Location,
		now:            opts.Now,
		announceTo:     opts.AnnounceTo,
		mediaBaseURL:   strings.TrimSuffix(opts.MediaBaseURL, "/"),
		contextTimeout: opts.ContextTimeout,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.contextTimeout <= 0 {
		s.contextTimeout = 10 * time.Second
	}
	return s
}

func (s *eventService) IsUpcoming(e *domain.Event) bool {
	return domain.IsUpcoming(e.Date, s.now(), s.loc)
}

func (s *eventService) Create(ctx context.Context, fields domain.EventFields, flyers, photos []domain.Upload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	fields = trimFields(fields)
	date, err := s.validateCreate(fields, flyers, photos)
	if err != nil {
		return nil, err
	}
	event := domain.NewEvent(fields, date)

	flyerRefs, err := s.media.Store(ctx, domain.MediaFlyer, flyers)
	if err != nil {
		return nil, err
	}
	photoRefs, err := s.media.Store(ctx, domain.MediaPhoto, photos)
	if err != nil {
		s.media.Purge(context.WithoutCancel(ctx), flyerRefs)
		return nil, err
	}
	event.Flyers = flyerRefs
	event.Photos = photoRefs

	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.repo.Create(ctx, event); err != nil {
		s.media.Purge(context.WithoutCancel(ctx), event.AllReferences())
		return nil, &domain.PersistenceError{Op: "create event", Err: err}
	}

	s.announce(ctx, event)
	return event, nil
}

func (s *eventService) Update(ctx context.Context, id string, patch domain.EventPatch, flyers []domain.Upload, replaceFlyers bool) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch = domain.EventPatch{
		Title:            trimPtr(patch.Title),
		Date:             trimPtr(patch.Date),
		Location:         trimPtr(patch.Location),
		Type:             trimPtr(patch.Type),
		Description:      trimPtr(patch.Description),
		RegistrationLink: trimPtr(patch.RegistrationLink),
	}
	upd, err := s.validatePatch(patch, current)
	if err != nil {
		return nil, err
	}
	if caps := uploadCapErrors(flyers, nil); len(caps) > 0 {
		return nil, &domain.ValidationError{Fields: caps}
	}

	var change *domain.MediaChange
	if len(flyers) > 0 {
		mode := domain.AttachAppend
		if replaceFlyers {
			mode = domain.AttachOverwrite
		}
		change, err = s.media.Attach(ctx, current, domain.MediaFlyer, flyers, mode)
		if err != nil {
			return nil, err
		}
		upd.Flyers = &change.Refs
	}

	return s.persist(ctx, id, upd, change)
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, next, err := s.repo.Adjacent(ctx, event)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "adjacent events", Err: err}
	}
	return &domain.EventDetails{Event: event, Previous: prev, Next: next}, nil
}

func (s *eventService) ListAll(ctx context.Context) ([]*domain.Event, error) {
	return s.find(ctx, domain.EventFilter{Order: domain.SortAscending})
}

func (s *eventService) ListUpcoming(ctx context.Context) ([]*domain.Event, error) {
	today := domain.StartOfDay(s.now(), s.loc)
	return s.find(ctx, domain.EventFilter{From: &today, Order: domain.SortAscending})
}

// ListPast returns the events of year that are strictly before today, newest first.
// A year <= 0 means the current year.
func (s *eventService) ListPast(ctx context.Context, year int) ([]*domain.Event, error) {
	today := domain.StartOfDay(s.now(), s.loc)
	if year <= 0 {
		year = today.Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if yesterday := today.AddDate(0, 0, -1); to.After(yesterday) {
		to = yesterday
	}
	if to.Before(from) {
		return []*domain.Event{}, nil
	}
	return s.find(ctx, domain.EventFilter{From: &from, To: &to, Order: domain.SortDescending})
}

// Delete removes the event record first, then its media. Media cleanup never fails the call.
func (s *eventService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return &domain.PersistenceError{Op: "delete event", Err: err}
	}
	s.media.Purge(context.WithoutCancel(ctx), event.AllReferences())
	return nil
}

func (s *eventService) UploadMedia(ctx context.Context, id string, kind domain.MediaKind, files []domain.Upload, mode domain.AttachMode) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	field := string(kind) + "s"
	if len(files) == 0 {
		return nil, domain.NewValidationError(field, "at least one file is required")
	}
	var caps []domain.FieldError
	if kind == domain.MediaPhoto {
		caps = uploadCapErrors(nil, files)
	} else {
		caps = uploadCapErrors(files, nil)
	}
	if len(caps) > 0 {
		return nil, &domain.ValidationError{Fields: caps}
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	change, err := s.media.Attach(ctx, current, kind, files, mode)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, id, mediaUpdate(change), change)
}

// DeleteMedia removes references from one media list. Repeating a call is a no-op.
func (s *eventService) DeleteMedia(ctx context.Context, id string, kind domain.MediaKind, refs []string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	change := s.media.Detach(current, kind, refs)
	if !change.Changed() {
		return current, nil
	}
	return s.persist(ctx, id, mediaUpdate(change), change)
}

// persist writes upd and then settles change: committed on success, rolled back on failure.
func (s *eventService) persist(ctx context.Context, id string, upd domain.EventUpdate, change *domain.MediaChange) (*domain.Event, error) {
	updated, err := s.repo.UpdateFields(ctx, id, upd)
	cleanupCtx := context.WithoutCancel(ctx)
	if err != nil {
		s.media.Rollback(cleanupCtx, change)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "update event", Err: err}
	}
	s.media.Commit(cleanupCtx, change)
	return updated, nil
}

func (s *eventService) get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get event", Err: err}
	}
	return event, nil
}

func (s *eventService) find(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.repo.FindWhere(ctx, filter)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find events", Err: err}
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// announce mails the announcement list about a new upcoming event. Failures are logged only.
func (s *eventService) announce(ctx context.Context, e *domain.Event) {
	if s.email == nil || s.announceTo == "" || !s.IsUpcoming(e) {
		return
	}
	data := &domain.EventAnnouncementEmailData{
		To:               s.announceTo,
		Title:            e.Title,
		Date:             e.Date.Format(domain.DateLayout),
		Location:         e.Location,
		Description:      e.Description,
		RegistrationLink: e.RegistrationLink,
	}
	if len(e.Flyers) > 0 && s.mediaBaseURL != "" {
		data.FlyerURL = fmt.Sprintf("%s/%s", s.mediaBaseURL, e.Flyers[0])
	}
	if err := s.email.SendEventAnnouncement(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "event announcement failed", "event_id", e.ID, "err", err)
	}
}

func mediaUpdate(c *domain.MediaChange) domain.EventUpdate {
	refs := c.Refs
	if c.Kind == domain.MediaPhoto {
		return domain.EventUpdate{Photos: &refs}
	}
	return domain.EventUpdate{Flyers: &refs}
}
