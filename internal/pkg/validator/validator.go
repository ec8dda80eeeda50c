package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks request DTOs and reports problems by their json field names.
type Validator struct {
	validate *validator.Validate
}

// ValidationError is one entry of the details list in a VALIDATION_ERROR response.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns nil when i passes every rule.
func (v *Validator) Validate(i interface{}) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(v.validate.Struct(i), &fieldErrs) {
		return nil
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: message(fe),
		})
	}
	return out
}

// messages are keyed by tag; %[1]s is the field and %[2]s the tag parameter.
var messages = map[string]string{
	"required":         "%[1]s is required",
	"required_without": "%[1]s is required when %[2]s is not set",
	"oneof":            "%[1]s must be one of [%[2]s]",
	"gt":               "%[1]s must be greater than %[2]s",
	"gte":              "%[1]s must be greater than or equal to %[2]s",
	"lt":               "%[1]s must be less than %[2]s",
	"lte":              "%[1]s must be less than or equal to %[2]s",
	"min":              "%[1]s must be at least %[2]s characters long",
	"max":              "%[1]s must be at most %[2]s characters long",
}

// collectionMessages replace messages for slices and maps, where min/max count items.
var collectionMessages = map[string]string{
	"min": "%[1]s must contain at least %[2]s items",
	"max": "%[1]s must contain at most %[2]s items",
}

func message(fe validator.FieldError) string {
	format, ok := messages[fe.Tag()]
	if k := fe.Kind(); k == reflect.Slice || k == reflect.Array || k == reflect.Map {
		if f, found := collectionMessages[fe.Tag()]; found {
			format, ok = f, true
		}
	}
	if !ok {
		return fmt.Sprintf("%s failed validation for tag: %s", fe.Field(), fe.Tag())
	}
	return fmt.Sprintf(format, fe.Field(), fe.Param())
}
