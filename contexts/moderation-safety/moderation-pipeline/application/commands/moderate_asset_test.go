package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"warden/contexts/moderation-safety/moderation-pipeline/adapters/memory"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/services"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

type stubText struct {
	mu     sync.Mutex
	emote  map[string]string
	err    error
	fields []string
}

func (s *stubText) Check(_ context.Context, text string, field string) (entities.Verdict, error) {
	s.mu.Lock()
	s.fields = append(s.fields, field)
	s.mu.Unlock()
	if s.err != nil {
		return entities.Verdict{}, s.err
	}
	emotion := s.emote[text]
	if emotion == "" {
		emotion = "neutral"
	}
	keyword, denied := services.EmotionDenied(emotion, nil)
	reason := ""
	if denied {
		reason = "text classified as " + keyword
	}
	return entities.NewVerdict(entities.VerdictSourceText, field, denied, 0.9, emotion, reason), nil
}

type stubImage struct {
	mu         sync.Mutex
	calls      int
	isNSFW     bool
	confidence float64
	category   string
	err        error
}

func (s *stubImage) Check(_ context.Context, _ string) (entities.Verdict, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return entities.Verdict{}, s.err
	}
	flagged := services.ImageFlagged(s.isNSFW, s.confidence, 0.65)
	return entities.NewVerdict(entities.VerdictSourceImage, "image", flagged, s.confidence, s.category, ""), nil
}

type strikeRecorder struct {
	mu       sync.Mutex
	requests []ports.StrikeRequest
	err      error
}

func (r *strikeRecorder) RecordUploadViolation(_ context.Context, request ports.StrikeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, request)
	return r.err
}

type auditRecorder struct {
	mu      sync.Mutex
	records []ports.AuditRecord
	err     error
}

func (r *auditRecorder) AppendAudit(_ context.Context, record ports.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

type pipelineFixture struct {
	store   *memory.Store
	text    *stubText
	image   *stubImage
	strikes *strikeRecorder
	audit   *auditRecorder
	uc      ModerateAssetUseCase
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{
		store:   memory.NewStore(),
		text:    &stubText{emote: map[string]string{}},
		image:   &stubImage{confidence: 0.1, category: "safe"},
		strikes: &strikeRecorder{},
		audit:   &auditRecorder{},
	}
	f.uc = ModerateAssetUseCase{
		Assets:       f.store,
		Lease:        f.store,
		Text:         f.text,
		Image:        f.image,
		Strikes:      f.strikes,
		Audit:        f.audit,
		Clock:        f.store,
		IDGen:        f.store,
		TextTimeout:  time.Second,
		ImageTimeout: time.Second,
	}
	return f
}

func cameraAsset() entities.Asset {
	return entities.Asset{
		AssetID:     "asset-1",
		AuthorID:    "author-1",
		Name:        "Realistic Camera Rig",
		Description: "High-quality camera",
		Tags:        []string{"camera", "props"},
		ImageURL:    "https://valid/img.png",
		Status:      entities.AssetStatusUploading,
		CreatedAt:   time.Now().Add(-time.Minute),
	}
}

func (f *pipelineFixture) run(t *testing.T, assetID string) ModerateAssetResult {
	t.Helper()
	result, err := f.uc.Execute(context.Background(), ModerateAssetCommand{AssetID: assetID, TriggerEventID: "evt-trigger"})
	if err != nil {
		t.Fatalf("moderation failed: %v", err)
	}
	return result
}

func (f *pipelineFixture) status(t *testing.T, assetID string) entities.AssetStatus {
	t.Helper()
	asset, err := f.store.GetAsset(context.Background(), assetID)
	if err != nil {
		t.Fatalf("get asset failed: %v", err)
	}
	return asset.Status
}

func TestCleanAssetIsPublished(t *testing.T) {
	f := newPipelineFixture()
	f.store.PutAsset(cameraAsset())

	result := f.run(t, "asset-1")
	if result.Skipped || result.Status != entities.AssetStatusPublished {
		t.Fatalf("expected published, got %+v", result)
	}
	if f.status(t, "asset-1") != entities.AssetStatusPublished {
		t.Fatalf("expected stored status published")
	}
	if len(f.strikes.requests) != 0 {
		t.Fatalf("expected no warnings, got %d", len(f.strikes.requests))
	}
	if len(f.audit.records) != 1 || f.audit.records[0].Action != entities.ActionAssetPublished {
		t.Fatalf("expected one ASSET_PUBLISHED entry, got %+v", f.audit.records)
	}
	if f.audit.records[0].Details["confidence"] != 0.1 {
		t.Fatalf("expected image confidence recorded, got %v", f.audit.records[0].Details["confidence"])
	}
	if types := f.store.OutboxEventTypes(); len(types) != 1 || types[0] != EventAssetPublished {
		t.Fatalf("expected asset.published outbox event, got %v", types)
	}
}

func TestExplicitNameRejectedBeforeImageCheck(t *testing.T) {
	f := newPipelineFixture()
	asset := cameraAsset()
	asset.Name = "sex toys collection"
	f.text.emote["sex toys collection"] = "sexual"
	f.store.PutAsset(asset)

	result := f.run(t, "asset-1")
	if result.Status != entities.AssetStatusRejected {
		t.Fatalf("expected rejected, got %+v", result)
	}
	if f.image.calls != 0 {
		t.Fatalf("image classifier must not be called, got %d calls", f.image.calls)
	}
	if len(f.text.fields) != 3 {
		t.Fatalf("expected every text field screened, got %v", f.text.fields)
	}
	if len(f.strikes.requests) != 1 || f.strikes.requests[0].UserID != "author-1" {
		t.Fatalf("expected one warning for the author, got %+v", f.strikes.requests)
	}
	if f.strikes.requests[0].Evidence != "https://valid/img.png" {
		t.Fatalf("expected image url as evidence, got %q", f.strikes.requests[0].Evidence)
	}
	if len(f.audit.records) != 1 || f.audit.records[0].Action != entities.ActionRejectedNSFWText {
		t.Fatalf("expected one UPLOAD_REJECTED_NSFW_TEXT entry, got %+v", f.audit.records)
	}
}

func TestImageFailureAlwaysRejects(t *testing.T) {
	failures := []error{
		fmt.Errorf("%w: timeout", domainerrors.ErrClassifierUnavailable),
		fmt.Errorf("%w: bad credential", domainerrors.ErrClassifierUnavailable),
		fmt.Errorf("%w: no json", domainerrors.ErrMalformedResponse),
		context.DeadlineExceeded,
	}
	for _, failure := range failures {
		f := newPipelineFixture()
		f.image.err = failure
		f.store.PutAsset(cameraAsset())

		result := f.run(t, "asset-1")
		if result.Status != entities.AssetStatusRejected {
			t.Fatalf("expected reject for %v, got %+v", failure, result)
		}
		if result.Decision.Reason != services.ReasonVerificationFailed {
			t.Fatalf("expected generic reason, got %q", result.Decision.Reason)
		}
		if len(f.strikes.requests) != 1 {
			t.Fatalf("expected exactly one warning, got %d", len(f.strikes.requests))
		}
		if f.audit.records[0].Action != entities.ActionRejectedUnverified {
			t.Fatalf("unexpected audit action %s", f.audit.records[0].Action)
		}
	}
}

func TestTextFailureDoesNotBlockPublish(t *testing.T) {
	f := newPipelineFixture()
	f.text.err = errors.New("emotion api down")
	f.store.PutAsset(cameraAsset())

	result := f.run(t, "asset-1")
	if result.Status != entities.AssetStatusPublished {
		t.Fatalf("expected published, got %+v", result)
	}
	if f.image.calls != 1 {
		t.Fatalf("expected image stage to run")
	}
	degraded := 0
	for _, verdict := range result.Decision.Verdicts {
		if verdict.Degraded {
			degraded++
		}
	}
	if degraded != 3 {
		t.Fatalf("expected three degraded text verdicts, got %d", degraded)
	}
}

func TestImageConfidenceAboveThresholdRejects(t *testing.T) {
	f := newPipelineFixture()
	f.image.confidence = 0.8
	f.image.category = "suggestive"
	f.store.PutAsset(cameraAsset())

	result := f.run(t, "asset-1")
	if result.Status != entities.AssetStatusRejected || result.Decision.Confidence != 0.8 {
		t.Fatalf("expected reject with confidence, got %+v", result)
	}
	if f.audit.records[0].Action != entities.ActionRejectedNSFW {
		t.Fatalf("unexpected audit action %s", f.audit.records[0].Action)
	}
}

func TestDecidedAssetIsNeverRetransitioned(t *testing.T) {
	f := newPipelineFixture()
	f.store.PutAsset(cameraAsset())
	f.run(t, "asset-1")

	f.image.confidence = 0.99
	second := f.run(t, "asset-1")
	if !second.Skipped || second.SkipReason != SkipNotUploading {
		t.Fatalf("expected skip on redelivery, got %+v", second)
	}
	if f.status(t, "asset-1") != entities.AssetStatusPublished {
		t.Fatalf("status must not change")
	}
	if len(f.audit.records) != 1 || f.image.calls != 1 {
		t.Fatalf("expected no second audit entry or classifier call")
	}
}

func TestMissingImageRejectsWithoutClassifierCalls(t *testing.T) {
	f := newPipelineFixture()
	asset := cameraAsset()
	asset.ImageURL = "not a url"
	f.store.PutAsset(asset)

	result := f.run(t, "asset-1")
	if result.Status != entities.AssetStatusRejected || result.Decision.Stage != entities.StagePrecondition {
		t.Fatalf("expected precondition reject, got %+v", result)
	}
	if f.image.calls != 0 || len(f.text.fields) != 0 {
		t.Fatalf("expected no classifier calls")
	}
	if len(f.strikes.requests) != 1 || len(f.audit.records) != 1 {
		t.Fatalf("expected one warning and one audit entry")
	}
	if f.strikes.requests[0].Evidence != "not a url" {
		t.Fatalf("unexpected evidence %q", f.strikes.requests[0].Evidence)
	}
}

func TestHeldLeaseSkipsRun(t *testing.T) {
	f := newPipelineFixture()
	f.store.PutAsset(cameraAsset())
	if _, ok, _ := f.store.Acquire(context.Background(), "moderation:asset:asset-1", time.Minute); !ok {
		t.Fatalf("expected to take the lease")
	}

	result := f.run(t, "asset-1")
	if !result.Skipped || result.SkipReason != SkipRunInProgress {
		t.Fatalf("expected skip while another run holds the lease, got %+v", result)
	}
	if f.status(t, "asset-1") != entities.AssetStatusUploading {
		t.Fatalf("status must stay uploading")
	}
}

func TestSideEffectFailuresKeepTransition(t *testing.T) {
	f := newPipelineFixture()
	f.image.isNSFW = true
	f.strikes.err = errors.New("ledger down")
	f.audit.err = errors.New("audit down")
	f.store.PutAsset(cameraAsset())

	result := f.run(t, "asset-1")
	if result.Status != entities.AssetStatusRejected || f.status(t, "asset-1") != entities.AssetStatusRejected {
		t.Fatalf("transition must survive side effect failures, got %+v", result)
	}
}

func TestUnknownAssetReturnsNotFound(t *testing.T) {
	f := newPipelineFixture()
	_, err := f.uc.Execute(context.Background(), ModerateAssetCommand{AssetID: "missing"})
	if !errors.Is(err, domainerrors.ErrAssetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
