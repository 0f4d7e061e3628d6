package entities

import (
	"strings"
	"time"

	domainerrors "warden/contexts/moderation-safety/audit-trail/domain/errors"
)

// SystemActorID marks entries produced by automated pipeline steps.
const SystemActorID = "SYSTEM"

type EntryStatus string

const (
	EntryStatusSuccess EntryStatus = "success"
	EntryStatusFailed  EntryStatus = "failed"
)

// Action tags emitted by the moderation core. Other modules send these as
// plain strings; the list here is what lookup/export filters recognise.
const (
	ActionAssetPublished          = "ASSET_PUBLISHED"
	ActionAssetRescanned          = "ASSET_RESCANNED"
	ActionUploadRejectedNSFW      = "UPLOAD_REJECTED_NSFW"
	ActionUploadRejectedNSFWText  = "UPLOAD_REJECTED_NSFW_TEXT"
	ActionUploadRejectedInvalid   = "UPLOAD_REJECTED_INVALID_IMAGE"
	ActionUploadRejectedUnchecked = "UPLOAD_REJECTED_VERIFICATION_FAILED"
	ActionWarningIssued           = "WARNING_ISSUED"
	ActionAutoBanTriggered        = "AUTO_BAN_TRIGGERED"
	ActionBanExpired              = "BAN_EXPIRED"
	ActionManualBan               = "MANUAL_BAN"
	ActionManualUnban             = "MANUAL_UNBAN"
)

// Entry is one immutable audit record.
type Entry struct {
	EntryID   string
	Timestamp time.Time
	ActorID   string
	Action    string
	TargetID  string
	Details   map[string]any
	Status    EntryStatus
}

// NewEntry normalizes an entry before it is appended. Missing actor falls
// back to SYSTEM and missing status to success.
func NewEntry(
	entryID string,
	actorID string,
	action string,
	targetID string,
	details map[string]any,
	status EntryStatus,
	at time.Time,
) (Entry, error) {
	entryID = strings.TrimSpace(entryID)
	action = strings.ToUpper(strings.TrimSpace(action))
	if entryID == "" || action == "" || at.IsZero() {
		return Entry{}, domainerrors.ErrInvalidEntry
	}

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		actorID = SystemActorID
	}
	switch status {
	case "":
		status = EntryStatusSuccess
	case EntryStatusSuccess, EntryStatusFailed:
	default:
		return Entry{}, domainerrors.ErrInvalidEntry
	}

	copied := make(map[string]any, len(details))
	for key, value := range details {
		copied[key] = value
	}

	return Entry{
		EntryID:   entryID,
		Timestamp: at.UTC(),
		ActorID:   actorID,
		Action:    action,
		TargetID:  strings.TrimSpace(targetID),
		Details:   copied,
		Status:    status,
	}, nil
}
