package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	application "warden/contexts/moderation-safety/strike-ledger/application"
	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

const actionBanExpired = "BAN_EXPIRED"

// BanExpirySweep lifts timed bans whose end date has passed.
type BanExpirySweep struct {
	Ledger        ports.LedgerRepository
	Principals    ports.AuthPrincipalStore
	Notifications ports.NotificationSink
	Audit         ports.AuditAppender
	Clock         ports.Clock
	BatchSize     int
	Concurrency   int
	Logger        *slog.Logger
}

// RunOnce returns how many users were restored. Failures for one user are
// logged and do not stop the others.
func (j BanExpirySweep) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}
	concurrency := j.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	expired, err := j.Ledger.ListExpiredBans(ctx, now, limit)
	if err != nil {
		logger.Error("ban expiry listing failed",
			"event", "strike_ban_expiry_list_failed",
			"module", "moderation-safety/strike-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	var restored atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for _, account := range expired {
		group.Go(func() error {
			if j.restore(groupCtx, logger, account, now) {
				restored.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()

	count := int(restored.Load())
	if len(expired) > 0 {
		logger.Info("ban expiry sweep completed",
			"event", "strike_ban_expiry_completed",
			"module", "moderation-safety/strike-ledger",
			"layer", "worker",
			"candidate_count", len(expired),
			"restored_count", count,
		)
	}
	return count, ctx.Err()
}

func (j BanExpirySweep) restore(ctx context.Context, logger *slog.Logger, account entities.UserAccount, now time.Time) bool {
	cleared, err := j.Ledger.ClearExpiredBan(ctx, account.UserID, now)
	if err != nil {
		logger.Error("ban expiry clear failed",
			"event", "strike_ban_expiry_clear_failed",
			"module", "moderation-safety/strike-ledger",
			"layer", "worker",
			"user_id", account.UserID,
			"error", err.Error(),
		)
		return false
	}
	if !cleared {
		return false
	}

	if j.Principals != nil {
		if err := j.Principals.Enable(ctx, account.UserID); err != nil {
			j.warn(logger, "auth_enable", account.UserID, err)
		}
	}
	if j.Notifications != nil {
		if err := j.Notifications.Notify(ctx, ports.Notification{
			UserID:  account.UserID,
			Type:    ports.NotificationAccountRestored,
			Title:   "Account restored",
			Message: "Your temporary suspension has ended. Please review the community guidelines.",
		}); err != nil {
			j.warn(logger, "notify_account_restored", account.UserID, err)
		}
	}
	if j.Audit != nil {
		details := map[string]any{"reason": account.Ban.Reason}
		if account.Ban.BanUntil != nil {
			details["ban_until"] = account.Ban.BanUntil.UTC().Format(time.RFC3339)
		}
		if err := j.Audit.AppendAudit(ctx, ports.AuditRecord{
			Action:   actionBanExpired,
			TargetID: account.UserID,
			Details:  details,
		}); err != nil {
			j.warn(logger, "audit_ban_expired", account.UserID, err)
		}
	}
	return true
}

func (j BanExpirySweep) warn(logger *slog.Logger, step string, userID string, err error) {
	logger.Warn("ban expiry side effect failed",
		"event", "strike_ban_expiry_side_effect_failed",
		"module", "moderation-safety/strike-ledger",
		"layer", "worker",
		"step", step,
		"user_id", userID,
		"error", err.Error(),
	)
}
