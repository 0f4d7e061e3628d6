package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/adapters/memory"
	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type auditRecorder struct {
	mu      sync.Mutex
	records []ports.AuditRecord
}

func (r *auditRecorder) AppendAudit(_ context.Context, record ports.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func bannedUntil(userID string, until time.Time) entities.UserAccount {
	bannedAt := until.Add(-7 * 24 * time.Hour)
	return entities.UserAccount{
		UserID: userID,
		Ban: entities.BanRecord{
			IsBanned: true,
			Reason:   "Automatic 7-day ban: 3 warnings for spam",
			BanUntil: &until,
			BannedAt: &bannedAt,
		},
	}
}

func TestBanExpirySweepIsIdempotent(t *testing.T) {
	now := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.PutAccount(bannedUntil("user-1", now.Add(-time.Hour)))
	store.PutAccount(bannedUntil("user-2", now.Add(time.Hour)))
	store.PutAccount(entities.UserAccount{UserID: "user-3", Ban: entities.BanRecord{IsBanned: true, Reason: "fraud"}})
	_ = store.Disable(context.Background(), "user-1")
	audit := &auditRecorder{}

	sweep := BanExpirySweep{
		Ledger:        store,
		Principals:    store,
		Notifications: store,
		Audit:         audit,
		Clock:         fixedClock{now: now},
	}

	restored, err := sweep.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected one restored user, got %d", restored)
	}
	account, _ := store.GetAccount(context.Background(), "user-1")
	if account.Ban.IsBanned || account.Ban.BanUntil != nil || account.Ban.Reason != "" {
		t.Fatalf("expected ban cleared, got %+v", account.Ban)
	}
	if store.LoginDisabled("user-1") {
		t.Fatalf("expected login re-enabled")
	}
	notes := store.Notifications("user-1")
	if len(notes) != 1 || notes[0].Type != ports.NotificationAccountRestored {
		t.Fatalf("expected restore notification, got %+v", notes)
	}
	if len(audit.records) != 1 || audit.records[0].Action != actionBanExpired {
		t.Fatalf("expected one BAN_EXPIRED audit entry, got %+v", audit.records)
	}

	restored, err = sweep.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if restored != 0 || len(audit.records) != 1 || len(store.Notifications("user-1")) != 1 {
		t.Fatalf("second run must be a no-op, restored=%d", restored)
	}

	stillBanned, _ := store.GetAccount(context.Background(), "user-2")
	permanent, _ := store.GetAccount(context.Background(), "user-3")
	if !stillBanned.Ban.IsBanned || !permanent.Ban.IsBanned {
		t.Fatalf("unexpired and permanent bans must remain")
	}
}

func TestBanExpirySweepIsolatesFailures(t *testing.T) {
	now := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	for _, id := range []string{"user-1", "user-2", "user-3"} {
		store.PutAccount(bannedUntil(id, now.Add(-time.Minute)))
	}
	store.FailClearExpiredBan("user-2", errors.New("row lock timeout"))

	sweep := BanExpirySweep{Ledger: store, Clock: fixedClock{now: now}, Concurrency: 2}
	restored, err := sweep.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("per-user failure must not fail the sweep: %v", err)
	}
	if restored != 2 {
		t.Fatalf("expected two restored users, got %d", restored)
	}
	failed, _ := store.GetAccount(context.Background(), "user-2")
	if !failed.Ban.IsBanned {
		t.Fatalf("failed user should stay banned for the next run")
	}
}
