package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/TWRT/pm-dashboard/internal/client"
)

var validate = newValidator()

var messages = map[string]string{
	"title":        "Title is required",
	"authorUserId": "Author User ID is required",
	"name":         "Name is required",
	"description":  "Description is required",
	"startDate":    "Start date is required",
	"endDate":      "End date is required",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct checks v against its validate tags and reports failures as a
// *client.ValidationError keyed by JSON field name.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	verr := &client.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[fe.Field()] = message(fe)
	}
	return verr
}

func message(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		if msg, ok := messages[fe.Field()]; ok {
			return msg
		}
		return fe.Field() + " is required"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeDate turns a form date into a complete ISO-8601 timestamp. Empty
// input stays empty.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// NormalizeDates rewrites each named date in place, collecting failures into
// one ValidationError.
func NormalizeDates(dates map[string]*string) error {
	var verr *client.ValidationError
	for field, value := range dates {
		normalized, err := NormalizeDate(*value)
		if err != nil {
			if verr == nil {
				verr = &client.ValidationError{Fields: map[string]string{}}
			}
			verr.Fields[field] = fmt.Sprintf("%s is not a valid date", field)
			continue
		}
		*value = normalized
	}
	if verr != nil {
		return verr
	}
	return nil
}
