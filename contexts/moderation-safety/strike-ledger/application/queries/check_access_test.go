package queries

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/adapters/memory"
	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
)

func TestCheckAccessRejectsBannedUser(t *testing.T) {
	store := memory.NewStore()
	past := time.Now().Add(-time.Hour)
	store.PutAccount(entities.UserAccount{
		UserID: "user-1",
		Ban:    entities.BanRecord{IsBanned: true, Reason: "spam", BanUntil: &past},
	})
	store.PutAccount(entities.UserAccount{UserID: "user-2"})
	query := CheckAccessQuery{Ledger: store}

	err := query.Execute(context.Background(), "user-1")
	if !errors.Is(err, domainerrors.ErrAccountSuspended) {
		t.Fatalf("expected suspended for stale ban before sweep, got %v", err)
	}
	if !strings.Contains(err.Error(), "spam") {
		t.Fatalf("expected reason in message, got %q", err.Error())
	}
	if err := query.Execute(context.Background(), "user-2"); err != nil {
		t.Fatalf("expected access for clean user, got %v", err)
	}
	if err := query.Execute(context.Background(), "unknown"); err != nil {
		t.Fatalf("expected access for user without ledger account, got %v", err)
	}
}

func TestGetStandingCountsEveryCategory(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(entities.UserAccount{UserID: "user-1"})
	_, _ = store.RecordWarning(context.Background(), entities.Warning{
		WarningID: "w-1", UserID: "user-1", Category: entities.CategorySpam, IsActive: true, CreatedAt: time.Now(),
	}, nil)

	standing, err := GetStandingQuery{Ledger: store}.Execute(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("standing failed: %v", err)
	}
	if standing.ActiveWarnings[entities.CategorySpam] != 1 {
		t.Fatalf("expected one spam warning, got %v", standing.ActiveWarnings)
	}
	if _, ok := standing.ActiveWarnings[entities.CategoryHarassment]; !ok || len(standing.ActiveWarnings) != len(entities.Categories) {
		t.Fatalf("expected every category present, got %v", standing.ActiveWarnings)
	}
	if len(standing.RecentWarnings) != 1 {
		t.Fatalf("expected recent warning, got %d", len(standing.RecentWarnings))
	}
}
