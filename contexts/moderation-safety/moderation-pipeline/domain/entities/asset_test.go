package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
)

func TestDecideMovesUploadingAssetOnce(t *testing.T) {
	asset := Asset{AssetID: "asset-1", Status: AssetStatusUploading}
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	published, err := asset.Decide(Decision{Outcome: OutcomePublish, Stage: StageImage, Confidence: 0.1}, now)
	if err != nil {
		t.Fatalf("decide failed: %v", err)
	}
	if published.Status != AssetStatusPublished || published.Moderation.Confidence != 0.1 {
		t.Fatalf("unexpected asset after publish: %+v", published)
	}

	_, err = published.Decide(Decision{Outcome: OutcomeReject, Reason: "late"}, now)
	if !errors.Is(err, domainerrors.ErrAlreadyDecided) {
		t.Fatalf("expected already decided, got %v", err)
	}
}

func TestDecideRecordsRejectionReason(t *testing.T) {
	asset := Asset{AssetID: "asset-1", Status: AssetStatusUploading}
	rejected, err := asset.Decide(Decision{Outcome: OutcomeReject, Stage: StageText, Reason: "explicit language"}, time.Now())
	if err != nil {
		t.Fatalf("decide failed: %v", err)
	}
	if rejected.Status != AssetStatusRejected || rejected.Moderation.RejectionReason != "explicit language" {
		t.Fatalf("unexpected asset after reject: %+v", rejected)
	}
}

func TestNewVerdictClampsAndExplainsFlags(t *testing.T) {
	verdict := NewVerdict(VerdictSourceImage, "image", true, 1.7, "", "")
	if verdict.Confidence != 1 {
		t.Fatalf("expected clamped confidence, got %v", verdict.Confidence)
	}
	if verdict.Reason == "" {
		t.Fatalf("flagged verdict must carry a reason")
	}
}
