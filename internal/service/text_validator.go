package service

import (
	"strings"

	apperrors "github.com/spec-kit/ticket-escalation/pkg/util"
)

// TextValidator checks ticket text before anything else happens.
type TextValidator struct{}

// Validate fails with an invalid-ticket error when title or description is blank.
func (TextValidator) Validate(title, description string) error {
	details := map[string]any{}
	if strings.TrimSpace(title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(description) == "" {
		details["description"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewInvalidTicket("title or description were null or empty", details)
	}
	return nil
}
