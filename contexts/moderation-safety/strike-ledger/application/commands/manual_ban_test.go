package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/adapters/memory"
	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

func TestManualBanRequiresPrivilegedRole(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(entities.UserAccount{UserID: "user-1"})
	uc := ManualBanUseCase{Ledger: store, Clock: fixedClock{now: testNow}}

	_, err := uc.Execute(context.Background(), ManualBanCommand{
		Actor:  ports.Actor{UserID: "user-2", Role: entities.RoleUser},
		UserID: "user-1",
		Reason: "spam ring",
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestManualBanAndUnban(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(entities.UserAccount{UserID: "user-1"})
	audit := &auditRecorder{}
	admin := ports.Actor{UserID: "admin-1", Role: entities.RoleAdmin}
	ban := ManualBanUseCase{Ledger: store, Principals: store, Notifications: store, Audit: audit, Clock: fixedClock{now: testNow}}
	unban := ManualUnbanUseCase{Ledger: store, Principals: store, Notifications: store, Audit: audit, Clock: fixedClock{now: testNow}}
	ctx := context.Background()

	account, err := ban.Execute(ctx, ManualBanCommand{Actor: admin, UserID: "user-1", Reason: "spam ring", Duration: 48 * time.Hour})
	if err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if account.Ban.BanUntil == nil || !account.Ban.BanUntil.Equal(testNow.Add(48*time.Hour)) {
		t.Fatalf("unexpected ban end %v", account.Ban.BanUntil)
	}
	if !store.LoginDisabled("user-1") {
		t.Fatalf("expected login disabled")
	}

	account, err = unban.Execute(ctx, ManualUnbanCommand{Actor: admin, UserID: "user-1"})
	if err != nil {
		t.Fatalf("unban failed: %v", err)
	}
	if account.Ban.IsBanned || store.LoginDisabled("user-1") {
		t.Fatalf("expected ban lifted and login enabled")
	}
	if audit.count(actionManualBan) != 1 || audit.count(actionManualUnban) != 1 {
		t.Fatalf("unexpected audit records: %+v", audit.records)
	}
	if audit.records[0].ActorID != "admin-1" {
		t.Fatalf("expected actor id recorded, got %q", audit.records[0].ActorID)
	}

	if _, err := unban.Execute(ctx, ManualUnbanCommand{Actor: admin, UserID: "user-1"}); !errors.Is(err, domainerrors.ErrNotBanned) {
		t.Fatalf("expected not banned, got %v", err)
	}
}

func TestManualBanWithoutDurationIsPermanent(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(entities.UserAccount{UserID: "user-1"})
	uc := ManualBanUseCase{Ledger: store, Clock: fixedClock{now: testNow}}

	account, err := uc.Execute(context.Background(), ManualBanCommand{
		Actor:  ports.Actor{UserID: "founder-1", Role: entities.RoleFounder},
		UserID: "user-1",
		Reason: "fraud",
	})
	if err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if !account.Ban.IsPermanent() {
		t.Fatalf("expected permanent ban, got %+v", account.Ban)
	}
	if _, err := uc.Execute(context.Background(), ManualBanCommand{
		Actor:  ports.Actor{UserID: "founder-1", Role: entities.RoleFounder},
		UserID: "user-1",
	}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected reason to be required, got %v", err)
	}
}
