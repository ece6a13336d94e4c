package domain

import (
	"context"
	"time"
)

// DateLayout is the wire format of an event date (calendar date, no time of day).
const DateLayout = "2006-01-02"

// Event represents a single entry of the events feed.
// swagger:model Event
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             time.Time `json:"date"`
	Location         string    `json:"location"`
	Type             string    `json:"type"`
	Description      string    `json:"description"`
	RegistrationLink string    `json:"registrationLink"`
	Flyers           []string  `json:"flyers"`
	Photos           []string  `json:"photos"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewEvent returns a new Event built from validated fields. ID and timestamps are set by the repository on create.
func NewEvent(f EventFields, date time.Time) *Event {
	return &Event{
		Title:            f.Title,
		Date:             date,
		Location:         f.Location,
		Type:             f.Type,
		Description:      f.Description,
		RegistrationLink: f.RegistrationLink,
		Flyers:           []string{},
		Photos:           []string{},
	}
}

// References returns the media list of the given kind.
func (e *Event) References(kind MediaKind) []string {
	if kind == MediaPhoto {
		return e.Photos
	}
	return e.Flyers
}

// AllReferences returns every media reference the event holds, flyers first.
func (e *Event) AllReferences() []string {
	out := make([]string, 0, len(e.Flyers)+len(e.Photos))
	out = append(out, e.Flyers...)
	return append(out, e.Photos...)
}

// StartOfDay returns midnight of t's calendar date in loc, expressed as a UTC calendar date.
// Event dates are stored as UTC midnight, so the result compares directly against them.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsUpcoming reports whether an event dated date is today or later, as seen from now in loc.
// Classification is always derived, never stored.
func IsUpcoming(date, now time.Time, loc *time.Location) bool {
	return !date.Before(StartOfDay(now, loc))
}

// ParseDate parses an event date. Accepts YYYY-MM-DD and RFC 3339 timestamps; the time of day is dropped.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// EventFields are the user-supplied fields of a new event, as received from the client.
type EventFields struct {
	Title            string
	Date             string
	Location         string
	Type             string
	Description      string
	RegistrationLink string
}

// EventPatch carries a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title            *string
	Date             *string
	Location         *string
	Type             *string
	Description      *string
	RegistrationLink *string
}

// IsEmpty reports whether the patch changes no field.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.Location == nil && p.Type == nil &&
		p.Description == nil && p.RegistrationLink == nil
}

// EventUpdate is the repository-level patch: parsed values plus optional media lists.
type EventUpdate struct {
	Title            *string
	Date             *time.Time
	Location         *string
	Type             *string
	Description      *string
	RegistrationLink *string
	Flyers           *[]string
	Photos           *[]string
}

// SortOrder orders events by date.
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// EventFilter restricts FindWhere to an inclusive date range. Nil bounds are open.
type EventFilter struct {
	From  *time.Time
	To    *time.Time
	Order SortOrder
}

// EventDetails is a single event with its chronological neighbours.
type EventDetails struct {
	Event    *Event
	Previous *Event
	Next     *Event
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	FindWhere(ctx context.Context, filter EventFilter) ([]*Event, error)
	// Adjacent returns the events immediately before and after e in (date, id) order.
	Adjacent(ctx context.Context, e *Event) (prev, next *Event, err error)
	UpdateFields(ctx context.Context, id string, u EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the event lifecycle: validation, classification, CRUD and media flows.
type EventService interface {
	Create(ctx context.Context, fields EventFields, flyers, photos []Upload) (*Event, error)
	Update(ctx context.Context, id string, patch EventPatch, flyers []Upload, replaceFlyers bool) (*Event, error)
	GetByID(ctx context.Context, id string) (*EventDetails, error)
	ListAll(ctx context.Context) ([]*Event, error)
	ListUpcoming(ctx context.Context) ([]*Event, error)
	ListPast(ctx context.Context, year int) ([]*Event, error)
	Delete(ctx context.Context, id string) error
	UploadMedia(ctx context.Context, id string, kind MediaKind, files []Upload, mode AttachMode) (*Event, error)
	DeleteMedia(ctx context.Context, id string, kind MediaKind, refs []string) (*Event, error)
	IsUpcoming(e *Event) bool
}
