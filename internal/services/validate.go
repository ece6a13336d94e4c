package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"eventboard/internal/domain"
)

// Per-request upload caps.
const (
	MaxFlyersPerRequest = 20
	MaxPhotosPerRequest = 50
)

// eventInput mirrors domain.EventFields with validation rules. Field names in
// reported errors come from the json tags so they match the form field names.
type eventInput struct {
	Title            string `json:"title" validate:"required,max=200"`
	Date             string `json:"date" validate:"required,event_date"`
	Location         string `json:"location" validate:"max=200"`
	Type             string `json:"type" validate:"max=50"`
	Description      string `json:"description" validate:"required"`
	RegistrationLink string `json:"registrationLink" validate:"omitempty,http_url"`
}

type fieldValidator struct {
	v *validator.Validate
}

func newFieldValidator() *fieldValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("event_date", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	return &fieldValidator{v: v}
}

// check validates in; when only is non-empty, just those struct fields are validated.
func (fv *fieldValidator) check(in eventInput, only ...string) []domain.FieldError {
	var err error
	if len(only) > 0 {
		err = fv.v.StructPartial(in, only...)
	} else {
		err = fv.v.Struct(in)
	}
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.FieldError{{Field: "request", Message: err.Error()}}
	}
	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "http_url":
		return "must be a valid http(s) URL"
	case "event_date":
		return "must be a valid date (YYYY-MM-DD)"
	default:
		return "is invalid"
	}
}

func trimFields(f domain.EventFields) domain.EventFields {
	return domain.EventFields{
		Title:            strings.TrimSpace(f.Title),
		Date:             strings.TrimSpace(f.Date),
		Location:         strings.TrimSpace(f.Location),
		Type:             strings.TrimSpace(f.Type),
		Description:      strings.TrimSpace(f.Description),
		RegistrationLink: strings.TrimSpace(f.RegistrationLink),
	}
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

// validateCreate checks every field of a new event and returns its parsed date.
// All violations are collected before returning.
func (s *eventService) validateCreate(f domain.EventFields, flyers, photos []domain.Upload) (time.Time, error) {
	errs := s.validate.check(eventInput(f))
	date, dateErr := domain.ParseDate(f.Date)
	if dateErr == nil && f.RegistrationLink == "" && domain.IsUpcoming(date, s.now(), s.loc) {
		errs = append(errs, domain.FieldError{Field: "registrationLink", Message: "is required for upcoming events"})
	}
	errs = append(errs, uploadCapErrors(flyers, photos)...)
	if len(errs) > 0 {
		return time.Time{}, &domain.ValidationError{Fields: errs}
	}
	return date, nil
}

// validatePatch re-checks only the fields present in p. The registration link rule
// uses the patched date when present, otherwise the stored one.
func (s *eventService) validatePatch(p domain.EventPatch, current *domain.Event) (domain.EventUpdate, error) {
	var (
		in   eventInput
		only []string
		upd  domain.EventUpdate
	)
	if p.Title != nil {
		in.Title, only = *p.Title, append(only, "Title")
		upd.Title = p.Title
	}
	if p.Date != nil {
		in.Date, only = *p.Date, append(only, "Date")
	}
	if p.Location != nil {
		in.Location, only = *p.Location, append(only, "Location")
		upd.Location = p.Location
	}
	if p.Type != nil {
		in.Type, only = *p.Type, append(only, "Type")
		upd.Type = p.Type
	}
	if p.Description != nil {
		in.Description, only = *p.Description, append(only, "Description")
		upd.Description = p.Description
	}
	if p.RegistrationLink != nil {
		in.RegistrationLink, only = *p.RegistrationLink, append(only, "RegistrationLink")
		upd.RegistrationLink = p.RegistrationLink
	}
	if len(only) == 0 {
		return upd, nil
	}

	errs := s.validate.check(in, only...)
	effective := current.Date
	if p.Date != nil {
		if d, err := domain.ParseDate(*p.Date); err == nil {
			upd.Date = &d
			effective = d
		}
	}
	if p.RegistrationLink != nil && *p.RegistrationLink == "" && domain.IsUpcoming(effective, s.now(), s.loc) {
		errs = append(errs, domain.FieldError{Field: "registrationLink", Message: "is required for upcoming events"})
	}
	if len(errs) > 0 {
		return domain.EventUpdate{}, &domain.ValidationError{Fields: errs}
	}
	return upd, nil
}

func uploadCapErrors(flyers, photos []domain.Upload) []domain.FieldError {
	var errs []domain.FieldError
	if len(flyers) > MaxFlyersPerRequest {
		errs = append(errs, domain.FieldError{Field: "flyers", Message: fmt.Sprintf("at most %d files per request", MaxFlyersPerRequest)})
	}
	if len(photos) > MaxPhotosPerRequest {
		errs = append(errs, domain.FieldError{Field: "photos", Message: fmt.Sprintf("at most %d files per request", MaxPhotosPerRequest)})
	}
	return errs
}
