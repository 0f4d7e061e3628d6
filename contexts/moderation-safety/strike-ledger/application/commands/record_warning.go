package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "warden/contexts/moderation-safety/strike-ledger/application"
	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	"warden/contexts/moderation-safety/strike-ledger/domain/services"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

const (
	actionWarningIssued    = "WARNING_ISSUED"
	actionAutoBanTriggered = "AUTO_BAN_TRIGGERED"
	actionManualBan        = "MANUAL_BAN"
	actionManualUnban      = "MANUAL_UNBAN"
	systemActorID          = "SYSTEM"
)

type RecordWarningCommand struct {
	UserID   string
	Category string
	Message  string
	Evidence string
	ActorID  string
}

type WarningOutcome struct {
	Warning     entities.Warning
	StrikeCount int
	Threshold   int
	Banned      bool
	BanUntil    *time.Time
	Reason      string
}

// RecordWarningUseCase is not idempotent. Every call stores a new warning.
type RecordWarningUseCase struct {
	Ledger        ports.LedgerRepository
	Principals    ports.AuthPrincipalStore
	Notifications ports.NotificationSink
	Audit         ports.AuditAppender
	Policy        services.StrikePolicy
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

func (uc RecordWarningUseCase) Execute(ctx context.Context, cmd RecordWarningCommand) (WarningOutcome, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return WarningOutcome{}, domainerrors.ErrInvalidRequest
	}
	category, err := entities.ParseWarningCategory(cmd.Category)
	if err != nil {
		return WarningOutcome{}, err
	}
	if _, err := uc.Ledger.GetAccount(ctx, userID); err != nil {
		return WarningOutcome{}, err
	}

	warningID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return WarningOutcome{}, err
	}
	now := uc.Clock.Now().UTC()
	warning, err := entities.NewWarning(warningID, userID, category, cmd.Message, cmd.Evidence, now)
	if err != nil {
		return WarningOutcome{}, err
	}

	recorded, err := uc.Ledger.RecordWarning(ctx, warning, func(account entities.UserAccount, strikeCount int) (entities.BanRecord, bool) {
		return uc.Policy.Evaluate(strikeCount, category, account.Ban, now)
	})
	if err != nil {
		logger.Error("warning record failed",
			"event", "strike_warning_record_failed",
			"module", "moderation-safety/strike-ledger",
			"layer", "application",
			"user_id", userID,
			"category", string(category),
			"error", err.Error(),
		)
		return WarningOutcome{}, err
	}

	outcome := WarningOutcome{
		Warning:     recorded.Warning,
		StrikeCount: recorded.StrikeCount,
		Threshold:   uc.Policy.EffectiveThreshold(),
		Banned:      recorded.BanApplied,
	}
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		actorID = systemActorID
	}

	if recorded.BanApplied {
		outcome.BanUntil = recorded.Account.Ban.BanUntil
		outcome.Reason = recorded.Account.Ban.Reason
		uc.afterBan(ctx, logger, actorID, recorded)
	} else {
		uc.afterWarning(ctx, logger, actorID, recorded)
	}

	logger.Info("warning recorded",
		"event", "strike_warning_recorded",
		"module", "moderation-safety/strike-ledger",
		"layer", "application",
		"user_id", userID,
		"warning_id", recorded.Warning.WarningID,
		"category", string(category),
		"strike_count", recorded.StrikeCount,
		"ban_applied", recorded.BanApplied,
	)
	return outcome, nil
}

func (uc RecordWarningUseCase) afterBan(ctx context.Context, logger *slog.Logger, actorID string, recorded ports.RecordedWarning) {
	userID := recorded.Account.UserID
	if uc.Principals != nil {
		if err := uc.Principals.Disable(ctx, userID); err != nil {
			logSideEffectFailure(logger, "auth_disable", userID, err)
		}
	}
	ban := recorded.Account.Ban
	notify(ctx, logger, uc.Notifications, ports.Notification{
		UserID:  userID,
		Type:    ports.NotificationAccountSuspended,
		Title:   "Account suspended",
		Message: fmt.Sprintf("Your account has been suspended. Reason: %s", ban.Reason),
	})
	details := map[string]any{
		"warning_id":   recorded.Warning.WarningID,
		"category":     string(recorded.Warning.Category),
		"strike_count": recorded.StrikeCount,
		"reason":       ban.Reason,
	}
	if ban.BanUntil != nil {
		details["ban_until"] = ban.BanUntil.UTC().Format(time.RFC3339)
	}
	appendAudit(ctx, logger, uc.Audit, ports.AuditRecord{
		ActorID:  actorID,
		Action:   actionAutoBanTriggered,
		TargetID: userID,
		Details:  details,
	})
}

func (uc RecordWarningUseCase) afterWarning(ctx context.Context, logger *slog.Logger, actorID string, recorded ports.RecordedWarning) {
	userID := recorded.Warning.UserID
	notify(ctx, logger, uc.Notifications, ports.Notification{
		UserID:  userID,
		Type:    ports.NotificationWarningIssued,
		Title:   "Warning issued",
		Message: recorded.Warning.Message + " " + uc.Policy.WarningNotice(recorded.StrikeCount, recorded.Warning.Category),
	})
	appendAudit(ctx, logger, uc.Audit, ports.AuditRecord{
		ActorID:  actorID,
		Action:   actionWarningIssued,
		TargetID: userID,
		Details: map[string]any{
			"warning_id":   recorded.Warning.WarningID,
			"category":     string(recorded.Warning.Category),
			"strike_count": recorded.StrikeCount,
			"evidence":     recorded.Warning.Evidence,
		},
	})
}

func notify(ctx context.Context, logger *slog.Logger, sink ports.NotificationSink, notification ports.Notification) {
	if sink == nil {
		return
	}
	if err := sink.Notify(ctx, notification); err != nil {
		logSideEffectFailure(logger, "notify_"+notification.Type, notification.UserID, err)
	}
}

func appendAudit(ctx context.Context, logger *slog.Logger, audit ports.AuditAppender, record ports.AuditRecord) {
	if audit == nil {
		return
	}
	if err := audit.AppendAudit(ctx, record); err != nil {
		logSideEffectFailure(logger, "audit_"+strings.ToLower(record.Action), record.TargetID, err)
	}
}

func logSideEffectFailure(logger *slog.Logger, step string, userID string, err error) {
	logger.Warn("strike side effect failed",
		"event", "strike_side_effect_failed",
		"module", "moderation-safety/strike-ledger",
		"layer", "application",
		"step", step,
		"user_id", userID,
		"error", err.Error(),
	)
}
