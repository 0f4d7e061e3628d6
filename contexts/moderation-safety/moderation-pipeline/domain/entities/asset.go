package entities

import (
	"strings"
	"time"

	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
)

type AssetStatus string

const (
	AssetStatusUploading AssetStatus = "uploading"
	AssetStatusPublished AssetStatus = "published"
	AssetStatusRejected  AssetStatus = "rejected"
)

func (s AssetStatus) Terminal() bool {
	return s == AssetStatusPublished || s == AssetStatusRejected
}

// ModerationRecord is the user-visible outcome stored on the asset.
type ModerationRecord struct {
	Confidence      float64
	Category        string
	RejectionReason string
	Stage           DecisionStage
	DecidedAt       *time.Time
}

type Asset struct {
	AssetID     string
	AuthorID    string
	Name        string
	Description string
	Tags        []string
	ImageURL    string
	Status      AssetStatus
	Moderation  ModerationRecord
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TagsText joins tags into the single text field screened by moderation.
func (a Asset) TagsText() string {
	tags := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return strings.Join(tags, ", ")
}

// Decide applies a terminal decision. Only uploading assets move, and they
// move exactly once.
func (a Asset) Decide(decision Decision, at time.Time) (Asset, error) {
	if a.Status != AssetStatusUploading {
		if a.Status.Terminal() {
			return Asset{}, domainerrors.ErrAlreadyDecided
		}
		return Asset{}, domainerrors.ErrInvalidTransition
	}
	if decision.Outcome != OutcomePublish && decision.Outcome != OutcomeReject {
		return Asset{}, domainerrors.ErrInvalidTransition
	}

	decidedAt := at.UTC()
	next := a
	next.Tags = append([]string(nil), a.Tags...)
	next.Status = decision.TargetStatus()
	next.UpdatedAt = decidedAt
	next.Moderation = ModerationRecord{
		Confidence: decision.Confidence,
		Category:   decision.Category,
		Stage:      decision.Stage,
		DecidedAt:  &decidedAt,
	}
	if decision.Rejected() {
		next.Moderation.RejectionReason = decision.Reason
	}
	return next, nil
}
