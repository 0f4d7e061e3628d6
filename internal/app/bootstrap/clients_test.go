package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	audittrail "warden/contexts/moderation-safety/audit-trail"
	auditentities "warden/contexts/moderation-safety/audit-trail/domain/entities"
	moderationpipeline "warden/contexts/moderation-safety/moderation-pipeline"
	"warden/contexts/moderation-safety/moderation-pipeline/application/commands"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	strikeledger "warden/contexts/moderation-safety/strike-ledger"
	ledgerentities "warden/contexts/moderation-safety/strike-ledger/domain/entities"
)

type failingImage struct{}

func (failingImage) Check(context.Context, string) (entities.Verdict, error) {
	return entities.Verdict{}, domainerrors.ErrClassifierUnavailable
}

func wireInMemory(image failingImage) (moderationpipeline.Module, strikeledger.Module, audittrail.Module) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := audittrail.NewInMemoryModule(logger)
	ledger := strikeledger.NewInMemoryModule(ledgerAuditClient{service: audit.Service}, logger)
	pipeline := moderationpipeline.NewInMemoryModule(moderationpipeline.Dependencies{
		Image:   image,
		Strikes: strikeClient{recordWarning: ledger.RecordWarning},
		Audit:   pipelineAuditClient{service: audit.Service},
		Logger:  logger,
	})
	return pipeline, ledger, audit
}

func TestRepeatedRejectionsSuspendAuthor(t *testing.T) {
	pipeline, ledger, audit := wireInMemory(failingImage{})
	ledger.Store.PutAccount(ledgerentities.UserAccount{UserID: "author-1", Role: "user"})
	ctx := context.Background()

	for i, id := range []string{"asset-1", "asset-2", "asset-3"} {
		pipeline.Store.PutAsset(entities.Asset{
			AssetID:   id,
			AuthorID:  "author-1",
			Name:      "Rig",
			ImageURL:  "https://cdn.example.com/" + id + ".png",
			CreatedAt: time.Now().UTC(),
		})
		result, err := pipeline.Moderate.Execute(ctx, commands.ModerateAssetCommand{AssetID: id})
		if err != nil {
			t.Fatalf("moderation %d failed: %v", i, err)
		}
		if result.Status != entities.AssetStatusRejected {
			t.Fatalf("expected reject when the image check fails, got %s", result.Status)
		}
	}

	if err := ledger.Access.Execute(ctx, "author-1"); err == nil {
		t.Fatalf("expected author to be suspended after three rejections")
	}
	if !ledger.Store.LoginDisabled("author-1") {
		t.Fatalf("expected login disabled")
	}
	if got := audit.Store.CountAction(auditentities.ActionUploadRejectedUnchecked); got != 3 {
		t.Fatalf("expected 3 rejection entries, got %d", got)
	}
	// The third warning is audited as the ban it triggers.
	if got := audit.Store.CountAction(auditentities.ActionWarningIssued); got != 2 {
		t.Fatalf("expected 2 warning entries, got %d", got)
	}
	if got := audit.Store.CountAction(auditentities.ActionAutoBanTriggered); got != 1 {
		t.Fatalf("expected one auto-ban entry, got %d", got)
	}
}
