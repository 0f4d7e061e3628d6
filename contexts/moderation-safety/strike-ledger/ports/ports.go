package ports

import (
	"context"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Actor is the authenticated caller of an administrative operation.
type Actor struct {
	UserID string
	Role   string
}

// BanDecider runs inside the ledger transaction after the user row is locked.
// strikeCount already includes the warning being inserted.
type BanDecider func(account entities.UserAccount, strikeCount int) (entities.BanRecord, bool)

type RecordedWarning struct {
	Warning     entities.Warning
	Account     entities.UserAccount
	StrikeCount int
	BanApplied  bool
}

type LedgerRepository interface {
	GetAccount(ctx context.Context, userID string) (entities.UserAccount, error)
	// RecordWarning counts active warnings for the category, inserts the
	// warning and applies the decided ban as one atomic step per user.
	RecordWarning(ctx context.Context, warning entities.Warning, decide BanDecider) (RecordedWarning, error)
	CountActiveWarnings(ctx context.Context, userID string) (map[entities.WarningCategory]int, error)
	ListWarnings(ctx context.Context, userID string, limit int) ([]entities.Warning, error)
	SetBan(ctx context.Context, userID string, ban entities.BanRecord, updatedAt time.Time) (entities.UserAccount, error)
	ClearBan(ctx context.Context, userID string, updatedAt time.Time) (entities.UserAccount, error)
	ListExpiredBans(ctx context.Context, now time.Time, limit int) ([]entities.UserAccount, error)
	// ClearExpiredBan lifts the ban only while it is still set and past its
	// end date. It reports false when another run already cleared it.
	ClearExpiredBan(ctx context.Context, userID string, now time.Time) (bool, error)
}

type AuthPrincipalStore interface {
	Disable(ctx context.Context, userID string) error
	Enable(ctx context.Context, userID string) error
}

const (
	NotificationWarningIssued    = "warning_issued"
	NotificationAccountSuspended = "account_suspended"
	NotificationAccountRestored  = "account_restored"
)

type Notification struct {
	UserID  string
	Type    string
	Title   string
	Message string
}

type NotificationSink interface {
	Notify(ctx context.Context, notification Notification) error
}

type AuditRecord struct {
	ActorID  string
	Action   string
	TargetID string
	Details  map[string]any
}

type AuditAppender interface {
	AppendAudit(ctx context.Context, record AuditRecord) error
}
