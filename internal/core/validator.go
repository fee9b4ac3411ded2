package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/valter-silva-au/todo-list/pkg/models"
)

const (
	// MaxTitleLength is the maximum title length in characters, after trimming.
	MaxTitleLength = 200
	// MaxDescriptionLength is the maximum description length in characters.
	MaxDescriptionLength = 2000
	// MaxCategoryLength is the maximum category label length in characters.
	MaxCategoryLength = 50
)

// TaskFields is a set of proposed task values. A nil field is absent and
// left untouched by an update. For Category and DueDate, a pointer to the
// zero value clears the field.
type TaskFields struct {
	Title       *string
	Description *string
	Category    *models.Category
	Priority    *models.Priority
	DueDate     *models.Date
}

// ValidateNewTask checks fields proposed for a new task. The title is
// required; everything else follows ValidateTaskFields.
func ValidateNewTask(fields TaskFields, today models.Date) error {
	if fields.Title == nil {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	return ValidateTaskFields(fields, today)
}

// ValidateTaskFields checks every present field against the business rules.
// A due date is checked against today only here, at write time; a stored
// date that later falls in the past is never re-validated.
func ValidateTaskFields(fields TaskFields, today models.Date) error {
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		if n := utf8.RuneCountInString(title); n > MaxTitleLength {
			return &ValidationError{Field: "title", Reason: fmt.Sprintf("is %d characters, maximum is %d", n, MaxTitleLength)}
		}
	}

	if fields.Description != nil {
		if n := utf8.RuneCountInString(*fields.Description); n > MaxDescriptionLength {
			return &ValidationError{Field: "description", Reason: fmt.Sprintf("is %d characters, maximum is %d", n, MaxDescriptionLength)}
		}
	}

	if fields.Category != nil {
		if n := utf8.RuneCountInString(strings.TrimSpace(string(*fields.Category))); n > MaxCategoryLength {
			return &ValidationError{Field: "category", Reason: fmt.Sprintf("is %d characters, maximum is %d", n, MaxCategoryLength)}
		}
	}

	if fields.Priority != nil && !fields.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", *fields.Priority)}
	}

	if fields.DueDate != nil && !fields.DueDate.IsZero() && fields.DueDate.Before(today) {
		return &ValidationError{Field: "due_date", Reason: fmt.Sprintf("%s is in the past", fields.DueDate)}
	}

	return nil
}

// ValidateDateFormat checks that s is a strict YYYY-MM-DD calendar date.
func ValidateDateFormat(s string) error {
	if _, err := models.ParseDate(s); err != nil {
		return &ValidationError{Field: "due_date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return nil
}

// ParseDueDate parses user input into a due date. An empty string yields the
// zero date, which clears the field.
func ParseDueDate(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, nil
	}
	if err := ValidateDateFormat(s); err != nil {
		return models.Date{}, err
	}
	return models.ParseDate(s)
}
