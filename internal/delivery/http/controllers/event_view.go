package controllers

import (
	"strings"
	"time"

	"eventboard/internal/domain"
)

// EventResponse is the JSON representation of an event. IsUpcoming is computed per request.
// swagger:model EventResponse
type EventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             string    `json:"date" example:"2026-07-01"`
	Location         string    `json:"location"`
	Type             string    `json:"type"`
	Description      string    `json:"description"`
	RegistrationLink string    `json:"registrationLink"`
	Flyers           []string  `json:"flyers"`
	Photos           []string  `json:"photos"`
	FlyerURLs        []string  `json:"flyerUrls"`
	PhotoURLs        []string  `json:"photoUrls"`
	IsUpcoming       bool      `json:"isUpcoming"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// EventDetailsResponse is the body of GET /events/get/{id}. Neighbours are null at either end.
type EventDetailsResponse struct {
	Event         *EventResponse `json:"event"`
	PreviousEvent *EventResponse `json:"previousEvent"`
	NextEvent     *EventResponse `json:"nextEvent"`
}

// presenter turns domain events into responses.
type presenter struct {
	isUpcoming   func(*domain.Event) bool
	mediaBaseURL string
}

func (p presenter) event(e *domain.Event) *EventResponse {
	if e == nil {
		return nil
	}
	return &EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Date:             e.Date.Format(domain.DateLayout),
		Location:         e.Location,
		Type:             e.Type,
		Description:      e.Description,
		RegistrationLink: e.RegistrationLink,
		Flyers:           orEmpty(e.Flyers),
		Photos:           orEmpty(e.Photos),
		FlyerURLs:        p.urls(e.Flyers),
		PhotoURLs:        p.urls(e.Photos),
		IsUpcoming:       p.isUpcoming(e),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (p presenter) events(list []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, p.event(e))
	}
	return out
}

func (p presenter) urls(refs []string) []string {
	out := make([]string, 0, len(refs))
	base := strings.TrimSuffix(p.mediaBaseURL, "/")
	for _, ref := range refs {
		if base == "" {
			out = append(out, ref)
			continue
		}
		out = append(out, base+"/"+ref)
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
