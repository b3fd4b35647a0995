package validator

import (
	"net/url"
	"strings"
	"sync"

	ierr "github.com/flexprice/flexprice/internal/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func initValidator() {
	once.Do(func() {
		validate = validator.New()
	})
}

func GetValidator() *validator.Validate {
	initValidator()
	return validate
}

// ValidateRequest runs struct-tag validation (via go-playground/validator)
// over req and, on failure, folds the field errors into a single ierr with
// one reportable detail per offending field.
func ValidateRequest(req interface{}) error {
	initValidator()

	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, fieldErr := range validateErrs {
				details[fieldErr.Field()] = fieldErr.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ValidateURL requires raw, if set and non-blank, to be an https URL with a host.
func ValidateURL(raw *string) error {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	u, err := url.ParseRequestURI(*raw)
	if err != nil {
		return ierr.NewError("url must be a valid URL").Mark(ierr.ErrValidation)
	}
	if u.Scheme != "https" {
		return ierr.NewError("url must start with https://").Mark(ierr.ErrValidation)
	}
	if u.Host == "" {
		return ierr.NewError("url must have a valid host").Mark(ierr.ErrValidation)
	}
	return nil
}
