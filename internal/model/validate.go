package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError is a locally detected problem that blocks a submit. It
// carries exactly one user-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateResource checks r against the schema's rules and returns the first
// failure. position > 0 prefixes the message with the entry number.
func ValidateResource(schema Schema, r Resource, position int) error {
	prefix := ""
	if position > 0 {
		prefix = fmt.Sprintf("%s %d: ", schema.Label, position)
	}
	for _, name := range schema.Fields {
		rule, ok := schema.Rules[name]
		if !ok {
			continue
		}
		if err := validate.Var(r.Fields[name], rule); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return &ValidationError{Message: prefix + ruleMessage(name, verrs[0])}
			}
			return fmt.Errorf("validating %s: %w", name, err)
		}
	}
	if schema.Has("start_year") && schema.Has("end_year") {
		start, err1 := strconv.Atoi(r.Fields["start_year"])
		end, err2 := strconv.Atoi(r.Fields["end_year"])
		if err1 == nil && err2 == nil && end < start {
			return &ValidationError{Message: prefix + "End year must not be before start year."}
		}
	}
	return nil
}

// ValidateCollection enforces the form-level entry limit (0 means no limit)
// and then validates every entry in order, stopping at the first failure.
func ValidateCollection(schema Schema, items []Resource, limit int) error {
	if limit > 0 && len(items) > limit {
		return &ValidationError{Message: fmt.Sprintf("You can add at most %d %s entries.", limit, strings.ToLower(schema.Label))}
	}
	for i, item := range items {
		if err := ValidateResource(schema, item, i+1); err != nil {
			return err
		}
	}
	return nil
}

func ruleMessage(field string, fe validator.FieldError) string {
	label := FieldLabel(field)
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "numeric":
		return label + " must be a number."
	case "len":
		return fmt.Sprintf("%s must be %s digits.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "e164":
		return label + " must be a phone number in international format, e.g. +15551234567."
	default:
		return label + " is invalid."
	}
}
