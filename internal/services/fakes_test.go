package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"eventboard/internal/domain"
)

// testLogger discards output so tests don't assert on log lines.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fixedNow is 2026-06-15 12:00 UTC; "today" in every service test.
var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	updateErr error
	deleteErr error
	findErr   error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(_ context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%02d", f.nextID)
	f.nextID++
	f.byID[e.ID] = cloneEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return cloneEvent(e), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) FindWhere(_ context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*domain.Event
	for _, e := range f.sorted() {
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	if filter.Order == domain.SortDescending {
		slices.Reverse(out)
	}
	return out, nil
}

func (f *fakeEventRepo) Adjacent(_ context.Context, e *domain.Event) (*domain.Event, *domain.Event, error) {
	all := f.sorted()
	for i, cur := range all {
		if cur.ID != e.ID {
			continue
		}
		var prev, next *domain.Event
		if i > 0 {
			prev = cloneEvent(all[i-1])
		}
		if i < len(all)-1 {
			next = cloneEvent(all[i+1])
		}
		return prev, next, nil
	}
	return nil, nil, nil
}

func (f *fakeEventRepo) UpdateFields(_ context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Type != nil {
		e.Type = *u.Type
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.RegistrationLink != nil {
		e.RegistrationLink = *u.RegistrationLink
	}
	if u.Flyers != nil {
		e.Flyers = slices.Clone(*u.Flyers)
	}
	if u.Photos != nil {
		e.Photos = slices.Clone(*u.Photos)
	}
	e.UpdatedAt = e.UpdatedAt.Add(time.Second)
	return cloneEvent(e), nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// sorted returns stored events by (date, id), matching the postgres ordering.
func (f *fakeEventRepo) sorted() []*domain.Event {
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeEventRepo) seed(title string, date time.Time, flyers, photos []string) *domain.Event {
	e := &domain.Event{
		ID:               fmt.Sprintf("ev-%02d", f.nextID),
		Title:            title,
		Date:             date,
		Description:      title + " description",
		RegistrationLink: "https://example.com/register",
		Flyers:           flyers,
		Photos:           photos,
	}
	if e.Flyers == nil {
		e.Flyers = []string{}
	}
	if e.Photos == nil {
		e.Photos = []string{}
	}
	f.nextID++
	f.byID[e.ID] = e
	return cloneEvent(e)
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Flyers = slices.Clone(e.Flyers)
	c.Photos = slices.Clone(e.Photos)
	return &c
}

// fakeMediaStore is an in-memory MediaStore. Saves of a filename in failOn fail;
// deletes of a ref in deleteErr fail.
type fakeMediaStore struct {
	mu        sync.Mutex
	files     map[string]string
	n         int
	failOn    map[string]bool
	deleteErr map[string]error
	deleted   []string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{files: map[string]string{}, failOn: map[string]bool{}, deleteErr: map[string]error{}}
}

func (f *fakeMediaStore) Save(_ context.Context, kind domain.MediaKind, up domain.Upload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[up.Filename] {
		return "", fmt.Errorf("disk full")
	}
	rc, err := up.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	f.n++
	ref := fmt.Sprintf("events/%ss/%04d-%s", kind, f.n, up.Filename)
	f.files[ref] = string(data)
	return ref, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	if err := f.deleteErr[ref]; err != nil {
		return err
	}
	delete(f.files, ref)
	return nil
}

func (f *fakeMediaStore) has(ref string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[ref]
	return ok
}

func (f *fakeMediaStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

// put pre-populates a stored file, as if an earlier request had saved it.
func (f *fakeMediaStore) put(refs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range refs {
		f.files[r] = "old"
	}
}

func uploads(names ...string) []domain.Upload {
	out := make([]domain.Upload, 0, len(names))
	for _, n := range names {
		out = append(out, domain.NewUpload(n, "image/png", []byte(strings.ToUpper(n))))
	}
	return out
}

// fakeEmailService records announcements.
type fakeEmailService struct {
	sent []*domain.EventAnnouncementEmailData
	err  error
}

func (f *fakeEmailService) SendEventAnnouncement(_ context.Context, data *domain.EventAnnouncementEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type testEnv struct {
	repo  *fakeEventRepo
	store *fakeMediaStore
	email *fakeEmailService
	svc   domain.EventService
}

func newTestEnv() *testEnv {
	repo := newFakeEventRepo()
	store := newFakeMediaStore()
	email := &fakeEmailService{}
	svc := NewEventService(repo, NewMediaService(store, testLogger), testLogger, EventServiceOptions{
		Location:     time.UTC,
		Now:          func() time.Time { return fixedNow },
		Email:        email,
		AnnounceTo:   "members@example.com",
		MediaBaseURL: "http://localhost:8080/assets/",
	})
	return &testEnv{repo: repo, store: store, email: email, svc: svc}
}
