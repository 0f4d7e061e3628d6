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
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

type ManualBanCommand struct {
	Actor  ports.Actor
	UserID string
	Reason string
	// Duration of zero bans permanently.
	Duration time.Duration
}

type ManualBanUseCase struct {
	Ledger        ports.LedgerRepository
	Principals    ports.AuthPrincipalStore
	Notifications ports.NotificationSink
	Audit         ports.AuditAppender
	Clock         ports.Clock
	Logger        *slog.Logger
}

func (uc ManualBanUseCase) Execute(ctx context.Context, cmd ManualBanCommand) (entities.UserAccount, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !entities.IsPrivilegedRole(cmd.Actor.Role) {
		return entities.UserAccount{}, domainerrors.ErrForbidden
	}
	userID := strings.TrimSpace(cmd.UserID)
	reason := strings.TrimSpace(cmd.Reason)
	if userID == "" || reason == "" || cmd.Duration < 0 {
		return entities.UserAccount{}, domainerrors.ErrInvalidRequest
	}

	now := uc.Clock.Now().UTC()
	ban := entities.BanRecord{
		IsBanned: true,
		Reason:   reason,
		BannedAt: &now,
	}
	if cmd.Duration > 0 {
		until := now.Add(cmd.Duration)
		ban.BanUntil = &until
	}
	account, err := uc.Ledger.SetBan(ctx, userID, ban, now)
	if err != nil {
		return entities.UserAccount{}, err
	}

	if uc.Principals != nil {
		if err := uc.Principals.Disable(ctx, userID); err != nil {
			logSideEffectFailure(logger, "auth_disable", userID, err)
		}
	}
	notify(ctx, logger, uc.Notifications, ports.Notification{
		UserID:  userID,
		Type:    ports.NotificationAccountSuspended,
		Title:   "Account suspended",
		Message: fmt.Sprintf("Your account has been suspended. Reason: %s", reason),
	})
	details := map[string]any{"reason": reason, "permanent": ban.BanUntil == nil}
	if ban.BanUntil != nil {
		details["ban_until"] = ban.BanUntil.Format(time.RFC3339)
	}
	appendAudit(ctx, logger, uc.Audit, ports.AuditRecord{
		ActorID:  strings.TrimSpace(cmd.Actor.UserID),
		Action:   actionManualBan,
		TargetID: userID,
		Details:  details,
	})

	logger.Info("manual ban applied",
		"event", "strike_manual_ban_applied",
		"module", "moderation-safety/strike-ledger",
		"layer", "application",
		"user_id", userID,
		"actor_id", cmd.Actor.UserID,
		"permanent", ban.BanUntil == nil,
	)
	return account, nil
}

type ManualUnbanCommand struct {
	Actor  ports.Actor
	UserID string
	Reason string
}

type ManualUnbanUseCase struct {
	Ledger        ports.LedgerRepository
	Principals    ports.AuthPrincipalStore
	Notifications ports.NotificationSink
	Audit         ports.AuditAppender
	Clock         ports.Clock
	Logger        *slog.Logger
}

func (uc ManualUnbanUseCase) Execute(ctx context.Context, cmd ManualUnbanCommand) (entities.UserAccount, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !entities.IsPrivilegedRole(cmd.Actor.Role) {
		return entities.UserAccount{}, domainerrors.ErrForbidden
	}
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return entities.UserAccount{}, domainerrors.ErrInvalidRequest
	}
	current, err := uc.Ledger.GetAccount(ctx, userID)
	if err != nil {
		return entities.UserAccount{}, err
	}
	if !current.Ban.IsBanned {
		return entities.UserAccount{}, domainerrors.ErrNotBanned
	}

	account, err := uc.Ledger.ClearBan(ctx, userID, uc.Clock.Now().UTC())
	if err != nil {
		return entities.UserAccount{}, err
	}
	if uc.Principals != nil {
		if err := uc.Principals.Enable(ctx, userID); err != nil {
			logSideEffectFailure(logger, "auth_enable", userID, err)
		}
	}
	notify(ctx, logger, uc.Notifications, ports.Notification{
		UserID:  userID,
		Type:    ports.NotificationAccountRestored,
		Title:   "Account restored",
		Message: "Your account suspension has been lifted.",
	})
	appendAudit(ctx, logger, uc.Audit, ports.AuditRecord{
		ActorID:  strings.TrimSpace(cmd.Actor.UserID),
		Action:   actionManualUnban,
		TargetID: userID,
		Details: map[string]any{
			"reason":          strings.TrimSpace(cmd.Reason),
			"previous_reason": current.Ban.Reason,
		},
	})
	return account, nil
}
