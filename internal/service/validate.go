package service

import (
	"regexp"
	"time"
	"unicode/utf8"

	"taskboard-api/internal/models"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxUserNameLen    = 50

	dueDateLayout = "2006-01-02"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateTitle(title string) error {
	if title == "" {
		return validationf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return validationf("title must be at most %d characters", maxTitleLen)
	}
	return nil
}

// normalizeDescription maps the empty string to absent and enforces the
// length limit.
func normalizeDescription(s string) (*string, error) {
	if s == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(s) > maxDescriptionLen {
		return nil, validationf("description must be at most %d characters", maxDescriptionLen)
	}
	return &s, nil
}

// normalizeDueDate maps the empty string to absent and requires the
// YYYY-MM-DD form otherwise.
func normalizeDueDate(s string) (*string, error) {
	if s == "" {
		return nil, nil
	}
	if _, err := time.Parse(dueDateLayout, s); err != nil {
		return nil, validationf("due_date must be a valid ISO date (YYYY-MM-DD)")
	}
	return &s, nil
}

func validatePriority(p models.TaskPriority) error {
	if !p.Valid() {
		return validationf("invalid priority %q", string(p))
	}
	return nil
}

func validateStatus(s models.TaskStatus) error {
	if !s.Valid() {
		return validationf("invalid status %q", string(s))
	}
	return nil
}

func validateUserName(name string) error {
	if name == "" {
		return validationf("name is required")
	}
	if utf8.RuneCountInString(name) > maxUserNameLen {
		return validationf("name must be at most %d characters", maxUserNameLen)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return validationf("invalid email address")
	}
	return nil
}

func validateRole(role models.UserRole) error {
	if !role.Valid() {
		return validationf("invalid role %q", string(role))
	}
	return nil
}
