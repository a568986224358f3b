package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels shown on the contact form
var FieldLabels = map[string]string{
	"FirstName":  "First name",
	"LastName":   "Last name",
	"Email":      "Email",
	"Phone":      "Phone",
	"EventDate":  "Event date",
	"VenueName":  "Venue name",
	"City":       "City",
	"State":      "State",
	"EventType":  "Event type",
	"GuestCount": "Guest count",
	"Message":    "Message",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// FirstValidationError returns the message of the first failing field.
func FirstValidationError(err error) string {
	messages := FormatValidationErrors(err)
	if len(messages) == 0 {
		return "Invalid request body"
	}
	return messages[0]
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		if e.Field() == "Email" {
			return "Valid email is required"
		}
		return fmt.Sprintf("%s is required", label)

	case "email":
		return "Valid email is required"

	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)

	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, param)

	case "calendar_date":
		return fmt.Sprintf("%s must be a valid date", label)

	case "not_past_date":
		return fmt.Sprintf("%s must be today or in the future", label)

	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
