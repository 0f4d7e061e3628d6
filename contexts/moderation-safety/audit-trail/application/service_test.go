package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"warden/contexts/moderation-safety/audit-trail/adapters/memory"
	"warden/contexts/moderation-safety/audit-trail/domain/entities"
	domainerrors "warden/contexts/moderation-safety/audit-trail/domain/errors"
)

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{
		Repo:        store,
		Clock:       &steppingClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		IDGenerator: store,
	}, store
}

func TestAppendDefaultsActorAndStatus(t *testing.T) {
	svc, store := newTestService()
	entry, err := svc.Append(context.Background(), AppendCommand{
		Action:   "asset_published",
		TargetID: "asset-1",
		Details:  map[string]any{"confidence": 0.1},
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if entry.ActorID != entities.SystemActorID {
		t.Fatalf("expected SYSTEM actor, got %q", entry.ActorID)
	}
	if entry.Status != entities.EntryStatusSuccess {
		t.Fatalf("expected success status, got %q", entry.Status)
	}
	if entry.Action != entities.ActionAssetPublished {
		t.Fatalf("expected normalized action, got %q", entry.Action)
	}
	if got := store.CountAction(entities.ActionAssetPublished); got != 1 {
		t.Fatalf("expected one stored entry, got %d", got)
	}
}

func TestAppendRejectsMissingAction(t *testing.T) {
	svc, store := newTestService()
	_, err := svc.Append(context.Background(), AppendCommand{TargetID: "asset-1"})
	if !errors.Is(err, domainerrors.ErrInvalidEntry) {
		t.Fatalf("expected invalid entry, got %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Fatalf("expected nothing appended")
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, target := range []string{"asset-1", "asset-2", "asset-3"} {
		if _, err := svc.Append(ctx, AppendCommand{Action: entities.ActionAssetPublished, TargetID: target}); err != nil {
			t.Fatalf("seed append failed: %v", err)
		}
	}

	first, err := svc.List(ctx, ListQuery{Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(first.Items) != 2 || first.NextCursor == "" {
		t.Fatalf("expected two items and a cursor, got %d items cursor=%q", len(first.Items), first.NextCursor)
	}
	if first.Items[0].TargetID != "asset-3" {
		t.Fatalf("expected newest entry first, got %s", first.Items[0].TargetID)
	}

	second, err := svc.List(ctx, ListQuery{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(second.Items) != 1 || second.Items[0].TargetID != "asset-1" || second.NextCursor != "" {
		t.Fatalf("unexpected second page: %+v", second)
	}
}

func TestListFiltersByTargetAndAction(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _ = svc.Append(ctx, AppendCommand{Action: entities.ActionWarningIssued, TargetID: "user-1"})
	_, _ = svc.Append(ctx, AppendCommand{Action: entities.ActionAutoBanTriggered, TargetID: "user-1"})
	_, _ = svc.Append(ctx, AppendCommand{Action: entities.ActionAutoBanTriggered, TargetID: "user-2"})

	result, err := svc.List(ctx, ListQuery{TargetID: "user-1", Action: "auto_ban_triggered"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].TargetID != "user-1" {
		t.Fatalf("expected one filtered entry, got %+v", result.Items)
	}
}

func TestListRejectsInvertedWindow(t *testing.T) {
	svc, _ := newTestService()
	now := time.Now().UTC()
	_, err := svc.List(context.Background(), ListQuery{Since: now, Until: now.Add(-time.Hour)})
	if !errors.Is(err, domainerrors.ErrInvalidFilter) {
		t.Fatalf("expected invalid filter, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _ = svc.Append(ctx, AppendCommand{
		Action:   entities.ActionUploadRejectedNSFW,
		TargetID: "asset-9",
		Details:  map[string]any{"reason": "explicit nudity", "confidence": 0.92},
	})

	var buf bytes.Buffer
	count, err := svc.Export(ctx, ListQuery{}, "csv", &buf)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one exported entry, got %d", count)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(records))
	}
	if records[1][3] != entities.ActionUploadRejectedNSFW || records[1][4] != "asset-9" {
		t.Fatalf("unexpected csv row: %v", records[1])
	}
	if !strings.Contains(records[1][6], "explicit nudity") {
		t.Fatalf("expected details json in csv row, got %q", records[1][6])
	}
}

func TestExportJSONLines(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, _ = svc.Append(ctx, AppendCommand{Action: entities.ActionBanExpired, TargetID: "user-1"})
	_, _ = svc.Append(ctx, AppendCommand{Action: entities.ActionBanExpired, TargetID: "user-2"})

	var buf bytes.Buffer
	count, err := svc.Export(ctx, ListQuery{Action: entities.ActionBanExpired}, "", &buf)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if count != 2 || len(lines) != 2 {
		t.Fatalf("expected two json lines, got count=%d lines=%d", count, len(lines))
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("line is not json: %v", err)
	}
	if record["target_id"] != "user-2" {
		t.Fatalf("expected newest entry first, got %v", record["target_id"])
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Export(context.Background(), ListQuery{}, "xml", &bytes.Buffer{})
	if !errors.Is(err, domainerrors.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}
