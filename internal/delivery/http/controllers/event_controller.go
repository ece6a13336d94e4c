package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// EventSuccessResponse is the success envelope for endpoints returning a single event.
type EventSuccessResponse struct {
	Data  *EventResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for endpoints returning a list of events.
type EventListSuccessResponse struct {
	Data  []*EventResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventDetailsSuccessResponse is the success envelope for GET /events/get/{id}.
type EventDetailsSuccessResponse struct {
	Data  EventDetailsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// DeleteEventSuccessResponse is the success envelope for DELETE /events/{id}.
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteEventResponse confirms which event was removed.
type DeleteEventResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type EventController struct {
	Logger         *slog.Logger
	Service        domain.EventService
	MaxUploadBytes int64
	present        presenter
}

func NewEventController(logger *slog.Logger, svc domain.EventService, mediaBaseURL string, maxUploadBytes int64) *EventController {
	return &EventController{
		Logger:         logger,
		Service:        svc,
		MaxUploadBytes: maxUploadBytes,
		present:        presenter{isUpcoming: svc.IsUpcoming, mediaBaseURL: mediaBaseURL},
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event from a multipart form. Flyers and photos may be attached under flyers / flyers[] and photos / photos[]. registrationLink is required when the date is today or later.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param date formData string true "Date (YYYY-MM-DD)"
// @Param location formData string false "Location"
// @Param type formData string false "Type"
// @Param description formData string true "Description"
// @Param registrationLink formData string false "Registration URL"
// @Param flyers formData file false "Flyer images"
// @Param photos formData file false "Photos"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 413 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: storage_error or internal_error"
// @Router /events/create [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	defer helpers.ReleaseForm(r)
	if err := helpers.ParseForm(w, r, c.MaxUploadBytes); err != nil {
		helpers.WriteFormError(w, err)
		return
	}
	fields := domain.EventFields{
		Title:            helpers.FormString(r, "title"),
		Date:             helpers.FormString(r, "date"),
		Location:         helpers.FormString(r, "location"),
		Type:             helpers.FormString(r, "type"),
		Description:      helpers.FormString(r, "description"),
		RegistrationLink: helpers.FormString(r, "registrationLink"),
	}
	flyers := helpers.FormUploads(r, "flyers", "flyers[]", "flyer")
	photos := helpers.FormUploads(r, "photos", "photos[]")

	event, err := c.Service.Create(r.Context(), fields, flyers, photos)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.audit(r, "event created", event.ID)
	helpers.WriteJSONSuccess(w, http.StatusCreated, c.present.event(event))
}

// audit records which editor changed an event.
func (c *EventController) audit(r *http.Request, msg, eventID string) {
	editor, _ := middleware.EditorIDFromContext(r.Context())
	c.Logger.InfoContext(r.Context(), msg, "event_id", eventID, "editor_id", editor)
}

// ListEvents godoc
// @Summary List all events
// @Description Every event, oldest first. Used by the calendar view.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListAll(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.present.events(events))
}

// ListUpcoming godoc
// @Summary List upcoming events
// @Description Events dated today or later, soonest first.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/upcoming [get]
func (c *EventController) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListUpcoming(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.present.events(events))
}

// ListPast godoc
// @Summary List past events of a year
// @Description Events of the given year dated before today, most recent first. Defaults to the current year.
// @Tags events
// @Produce json
// @Param year query int false "Year (YYYY)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/past [get]
func (c *EventController) ListPast(w http.ResponseWriter, r *http.Request) {
	year, err := helpers.ParseYear(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, err := c.Service.ListPast(r.Context(), year)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.present.events(events))
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event with its chronological neighbours. previousEvent / nextEvent are null at either end.
// @Tags events
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/get/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	details, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventDetailsResponse{
		Event:         c.present.event(details.Event),
		PreviousEvent: c.present.event(details.Previous),
		NextEvent:     c.present.event(details.Next),
	})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partial update from a multipart or urlencoded form; omitted fields are unchanged. New flyers are appended unless replaceFlyers is true.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param title formData string false "Title"
// @Param date formData string false "Date (YYYY-MM-DD)"
// @Param location formData string false "Location"
// @Param type formData string false "Type"
// @Param description formData string false "Description"
// @Param registrationLink formData string false "Registration URL"
// @Param replaceFlyers formData bool false "Replace existing flyers instead of appending"
// @Param flyers formData file false "Flyer images"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: storage_error or internal_error"
// @Router /events/update/{id} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	defer helpers.ReleaseForm(r)
	if err := helpers.ParseForm(w, r, c.MaxUploadBytes); err != nil {
		helpers.WriteFormError(w, err)
		return
	}
	replaceFlyers, err := helpers.FormBool(r, "replaceFlyers")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	patch := domain.EventPatch{
		Title:            helpers.FormPtr(r, "title"),
		Date:             helpers.FormPtr(r, "date"),
		Location:         helpers.FormPtr(r, "location"),
		Type:             helpers.FormPtr(r, "type"),
		Description:      helpers.FormPtr(r, "description"),
		RegistrationLink: helpers.FormPtr(r, "registrationLink"),
	}
	flyers := helpers.FormUploads(r, "flyers", "flyers[]", "flyer")

	event, err := c.Service.Update(r.Context(), id, patch, flyers, replaceFlyers)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.audit(r, "event updated", id)
	helpers.WriteJSONSuccess(w, http.StatusOK, c.present.event(event))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Removes the event and then its flyers and photos. Media cleanup failures do not fail the request.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.audit(r, "event deleted", id)
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{ID: id, Message: "event deleted"})
}
