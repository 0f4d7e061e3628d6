package commands

import (
	"context"
	"errors"
	"testing"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

func TestRescanRequiresPrivilegedRole(t *testing.T) {
	f := newPipelineFixture()
	f.store.PutAsset(cameraAsset())
	uc := RescanAssetUseCase{Assets: f.store, Image: f.image, Audit: f.audit}

	_, err := uc.Execute(context.Background(), RescanAssetCommand{
		AssetID:   "asset-1",
		Principal: ports.Principal{UserID: "author-1", Role: "user"},
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if f.image.calls != 0 {
		t.Fatalf("denied rescan must not call the classifier")
	}
}

func TestRescanNeverMutatesStatus(t *testing.T) {
	f := newPipelineFixture()
	asset := cameraAsset()
	asset.Status = entities.AssetStatusPublished
	f.store.PutAsset(asset)
	f.image.confidence = 0.9
	uc := RescanAssetUseCase{Assets: f.store, Image: f.image, Audit: f.audit}

	result, err := uc.Execute(context.Background(), RescanAssetCommand{
		AssetID:   "asset-1",
		Principal: ports.Principal{UserID: "admin-1", Role: entities.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("rescan failed: %v", err)
	}
	if !result.Verdict.IsFlagged {
		t.Fatalf("expected flagged verdict, got %+v", result.Verdict)
	}
	if f.status(t, "asset-1") != entities.AssetStatusPublished {
		t.Fatalf("rescan must not change status")
	}
	if len(f.strikes.requests) != 0 || len(f.store.OutboxEventTypes()) != 0 {
		t.Fatalf("rescan must not record warnings or events")
	}
	if len(f.audit.records) != 1 || f.audit.records[0].Action != entities.ActionAssetRescanned || f.audit.records[0].ActorID != "admin-1" {
		t.Fatalf("expected rescan audit entry, got %+v", f.audit.records)
	}
}

func TestRescanReturnsTypedClassifierErrors(t *testing.T) {
	f := newPipelineFixture()
	f.store.PutAsset(cameraAsset())
	f.image.err = domainerrors.ErrMalformedResponse
	uc := RescanAssetUseCase{Assets: f.store, Image: f.image}

	_, err := uc.Execute(context.Background(), RescanAssetCommand{
		AssetID:   "asset-1",
		Principal: ports.Principal{UserID: "founder-1", Role: entities.RoleFounder},
	})
	if !errors.Is(err, domainerrors.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}
