package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// DeleteMediaRequest is the JSON body for PATCH /events/{id}/delete-media.
type DeleteMediaRequest struct {
	Kind       string   `json:"kind" example:"photos"`
	References []string `json:"references"`
}

// Validate implements Validator.
func (d DeleteMediaRequest) Validate() []string {
	var errs []string
	if d.Kind == "" {
		errs = append(errs, "kind is required")
	}
	if len(d.References) == 0 {
		errs = append(errs, "references must not be empty")
	}
	return errs
}

// UploadMedia godoc
// @Summary Upload flyers or photos
// @Description Stores the uploaded files and appends them to (or, with action=overwrite, replaces) the event's flyers or photos. Duplicate filenames within an append are stored once.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param kind formData string true "flyers or photos"
// @Param action formData string false "append (default) or overwrite"
// @Param flyers formData file false "Flyer images (kind=flyers)"
// @Param photos formData file false "Photos (kind=photos)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: storage_error or internal_error"
// @Router /events/{id}/upload-media [patch]
func (c *EventController) UploadMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	defer helpers.ReleaseForm(r)
	if err := helpers.ParseForm(w, r, c.MaxUploadBytes); err != nil {
		helpers.WriteFormError(w, err)
		return
	}
	kind, err := domain.ParseMediaKind(strings.TrimSpace(helpers.FormString(r, "kind")))
	if err != nil {
		helpers.WriteValidationError(w, domain.NewValidationError("kind", "must be flyers or photos"))
		return
	}
	mode, err := domain.ParseAttachMode(strings.TrimSpace(helpers.FormString(r, "action")))
	if err != nil {
		helpers.WriteValidationError(w, domain.NewValidationError("action", "must be append or overwrite"))
		return
	}
	field := string(kind) + "s"
	files := helpers.FormUploads(r, field, field+"[]", "files", "files[]")

	event, err := c.Service.UploadMedia(r.Context(), id, kind, files, mode)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.present.event(event))
}

// DeleteMedia godoc
// @Summary Remove flyers or photos
// @Description Removes the given references from the event and deletes their files. Unknown references are ignored, so repeating a call is harmless. Accepts JSON or a form with kind and references[].
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body DeleteMediaRequest true "Media kind and references to remove"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/delete-media [patch]
func (c *EventController) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var req DeleteMediaRequest
	if helpers.IsJSON(r) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	} else {
		defer helpers.ReleaseForm(r)
		if err := helpers.ParseForm(w, r, 1<<20); err != nil {
			helpers.WriteFormError(w, err)
			return
		}
		req = DeleteMediaRequest{
			Kind:       helpers.FormString(r, "kind"),
			References: helpers.FormValues(r, "references", "references[]"),
		}
		if errs := req.Validate(); len(errs) > 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
			return
		}
	}
	kind, err := domain.ParseMediaKind(strings.TrimSpace(req.Kind))
	if err != nil {
		helpers.WriteValidationError(w, domain.NewValidationError("kind", "must be flyers or photos"))
		return
	}

	event, err := c.Service.DeleteMedia(r.Context(), id, kind, req.References)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.present.event(event))
}

// eventID reads and checks the {id} path value, writing a 400 when it is not a UUID.
func eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing event id")
		return "", false
	}
	if err := uuid.Validate(id); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return "", false
	}
	return id, true
}
