package entities

import (
	"strings"
	"time"

	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
)

type WarningCategory string

const (
	CategoryUploadAbuse   WarningCategory = "upload_abuse"
	CategorySpam          WarningCategory = "spam"
	CategoryHarassment    WarningCategory = "harassment"
	CategoryRuleViolation WarningCategory = "rule_violation"
)

// Categories is the closed set of violation categories.
var Categories = []WarningCategory{
	CategoryUploadAbuse,
	CategorySpam,
	CategoryHarassment,
	CategoryRuleViolation,
}

func ParseWarningCategory(raw string) (WarningCategory, error) {
	value := WarningCategory(strings.ToLower(strings.TrimSpace(raw)))
	for _, category := range Categories {
		if category == value {
			return value, nil
		}
	}
	return "", domainerrors.ErrInvalidCategory
}

// Warning is one strike. Warnings are deactivated, never deleted.
type Warning struct {
	WarningID string
	UserID    string
	Category  WarningCategory
	Message   string
	Evidence  string
	IsActive  bool
	CreatedAt time.Time
}

func NewWarning(
	warningID string,
	userID string,
	category WarningCategory,
	message string,
	evidence string,
	createdAt time.Time,
) (Warning, error) {
	if strings.TrimSpace(warningID) == "" || strings.TrimSpace(userID) == "" {
		return Warning{}, domainerrors.ErrInvalidRequest
	}
	if _, err := ParseWarningCategory(string(category)); err != nil {
		return Warning{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = "Policy violation recorded for " + string(category)
	}
	return Warning{
		WarningID: strings.TrimSpace(warningID),
		UserID:    strings.TrimSpace(userID),
		Category:  category,
		Message:   message,
		Evidence:  strings.TrimSpace(evidence),
		IsActive:  true,
		CreatedAt: createdAt.UTC(),
	}, nil
}
