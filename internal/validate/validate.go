// Package validate wraps go-playground/validator with the project's custom
// rules and turns validation failures into readable field messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{1,32}$`)
)

var (
	instance *validator.Validate
	initOnce sync.Once
	initErr  error
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error collects every failed field of one struct.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// First returns the first field message, which handlers show to users.
func (e *Error) First() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

func get() (*validator.Validate, error) {
	initOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		for tag, fn := range map[string]validator.Func{
			"slug":     validateSlug,
			"e164":     validatePhone,
			"username": validateUsername,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				initErr = fmt.Errorf("failed to register custom validator %s: %w", tag, err)
				return
			}
		}
		instance = v
	})
	return instance, initErr
}

// Struct validates s and returns *Error listing every failed field.
func Struct(s any) error {
	v, err := get()
	if err != nil {
		return err
	}
	err = v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validation error: %w", err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(validationErrors))}
	for _, fieldErr := range validationErrors {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Message: message(fieldErr),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "slug":
		return fmt.Sprintf("%s must contain only lowercase letters, digits, hyphens or underscores", field)
	case "e164":
		return fmt.Sprintf("%s must be a valid phone number in E.164 format (e.g. +12015550123)", field)
	case "username":
		return fmt.Sprintf("%s must be 1-32 characters of a-z, 0-9, '.', '_' or '-'", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	_, err := NormalizePhone(fl.Field().String())
	return err == nil
}

// NormalizePhone parses an international number and returns its E.164 form.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("phone is required")
	}
	if !strings.HasPrefix(raw, "+") {
		return "", fmt.Errorf("phone must start with + and a country code")
	}
	num, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return "", fmt.Errorf("invalid phone: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone: %s", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
