package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "warden/contexts/moderation-safety/moderation-pipeline/application"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/services"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

const (
	SkipNotUploading   = "not_uploading"
	SkipRunInProgress  = "run_in_progress"
	SkipAlreadyDecided = "already_decided"

	systemActorID = "SYSTEM"
)

type ModerateAssetCommand struct {
	AssetID        string
	TriggerEventID string
}

type ModerateAssetResult struct {
	AssetID    string
	Status     entities.AssetStatus
	Decision   entities.Decision
	Skipped    bool
	SkipReason string
}

// ModerateAssetUseCase runs the intake pipeline for one asset. It is safe to
// call again for the same asset: decided assets are skipped and concurrent
// runs are excluded by the lease and the conditional status update.
type ModerateAssetUseCase struct {
	Assets       ports.AssetRepository
	Lease        ports.RunLease
	Text         ports.TextClassifier
	Image        ports.ImageClassifier
	Strikes      ports.StrikeRecorder
	Audit        ports.AuditAppender
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	TextTimeout  time.Duration
	ImageTimeout time.Duration
	LeaseTTL     time.Duration
	Logger       *slog.Logger
}

func (uc ModerateAssetUseCase) Execute(ctx context.Context, cmd ModerateAssetCommand) (ModerateAssetResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	assetID := strings.TrimSpace(cmd.AssetID)
	if assetID == "" {
		return ModerateAssetResult{}, domainerrors.ErrInvalidInput
	}

	asset, err := uc.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return ModerateAssetResult{}, err
	}
	if asset.Status != entities.AssetStatusUploading {
		return skipped(asset, SkipNotUploading), nil
	}

	if uc.Lease != nil {
		key := "moderation:asset:" + assetID
		token, acquired, err := uc.Lease.Acquire(ctx, key, uc.leaseTTL())
		if err != nil {
			return ModerateAssetResult{}, err
		}
		if !acquired {
			logger.Info("moderation run already in progress",
				"event", "moderation_run_in_progress",
				"module", "moderation-safety/moderation-pipeline",
				"layer", "application",
				"asset_id", assetID,
			)
			return skipped(asset, SkipRunInProgress), nil
		}
		defer func() {
			if err := uc.Lease.Release(context.WithoutCancel(ctx), key, token); err != nil {
				logger.Warn("moderation lease release failed",
					"event", "moderation_lease_release_failed",
					"module", "moderation-safety/moderation-pipeline",
					"layer", "application",
					"asset_id", assetID,
					"error", err.Error(),
				)
			}
		}()

		// A run that finished while we waited for the lease has already decided.
		asset, err = uc.Assets.GetAsset(ctx, assetID)
		if err != nil {
			return ModerateAssetResult{}, err
		}
		if asset.Status != entities.AssetStatusUploading {
			return skipped(asset, SkipNotUploading), nil
		}
	}

	decision := uc.decide(ctx, logger, asset)
	decided, err := asset.Decide(decision, uc.Clock.Now())
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyDecided) {
			return skipped(asset, SkipAlreadyDecided), nil
		}
		return ModerateAssetResult{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return ModerateAssetResult{}, err
	}
	eventType, data := decisionEvent(decided, decision)
	envelope, err := newAssetEnvelope(eventID, eventType, assetID, decided.UpdatedAt, data)
	if err != nil {
		return ModerateAssetResult{}, err
	}
	applied, err := uc.Assets.ApplyDecision(ctx, decided, envelope)
	if err != nil {
		logger.Error("moderation decision persist failed",
			"event", "moderation_decision_persist_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "application",
			"asset_id", assetID,
			"outcome", string(decision.Outcome),
			"error", err.Error(),
		)
		return ModerateAssetResult{}, err
	}
	if !applied {
		return skipped(asset, SkipAlreadyDecided), nil
	}

	if decision.Rejected() {
		uc.recordStrike(ctx, logger, decided, decision)
	}
	uc.appendAudit(ctx, logger, decided, decision, cmd.TriggerEventID)

	logger.Info("asset moderated",
		"event", "moderation_asset_decided",
		"module", "moderation-safety/moderation-pipeline",
		"layer", "application",
		"asset_id", assetID,
		"author_id", decided.AuthorID,
		"outcome", string(decision.Outcome),
		"stage", string(decision.Stage),
		"confidence", decision.Confidence,
	)
	return ModerateAssetResult{
		AssetID:  assetID,
		Status:   decided.Status,
		Decision: decision,
	}, nil
}

// decide runs precondition, text and image stages strictly in order.
func (uc ModerateAssetUseCase) decide(ctx context.Context, logger *slog.Logger, asset entities.Asset) entities.Decision {
	if err := services.ValidateImageURL(asset.ImageURL); err != nil {
		return services.RejectPrecondition()
	}

	textVerdicts := uc.screenText(ctx, logger, asset)
	if decision, flagged := services.ResolveText(textVerdicts); flagged {
		return decision
	}

	imageCtx, cancel := context.WithTimeout(ctx, uc.imageTimeout())
	verdict, err := uc.Image.Check(imageCtx, asset.ImageURL)
	cancel()
	if err != nil {
		logger.Warn("image classification failed, rejecting",
			"event", "moderation_image_check_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "application",
			"asset_id", asset.AssetID,
			"error", err.Error(),
		)
	}
	return services.ResolveImage(textVerdicts, verdict, err)
}

// screenText evaluates every text field so the audit entry is complete.
func (uc ModerateAssetUseCase) screenText(ctx context.Context, logger *slog.Logger, asset entities.Asset) []entities.Verdict {
	fields := []struct {
		name  string
		value string
	}{
		{name: "name", value: asset.Name},
		{name: "description", value: asset.Description},
		{name: "tags", value: asset.TagsText()},
	}

	verdicts := make([]entities.Verdict, 0, len(fields))
	for _, field := range fields {
		if uc.Text == nil {
			verdicts = append(verdicts, entities.DegradedTextVerdict(field.name, "text screening not configured"))
			continue
		}
		textCtx, cancel := context.WithTimeout(ctx, uc.textTimeout())
		verdict, err := uc.Text.Check(textCtx, field.value, field.name)
		cancel()
		if err != nil {
			logger.Warn("text classification failed, continuing",
				"event", "moderation_text_check_degraded",
				"module", "moderation-safety/moderation-pipeline",
				"layer", "application",
				"asset_id", asset.AssetID,
				"field", field.name,
				"error", err.Error(),
			)
			verdict = entities.DegradedTextVerdict(field.name, "text screening unavailable: "+err.Error())
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts
}

func (uc ModerateAssetUseCase) recordStrike(ctx context.Context, logger *slog.Logger, asset entities.Asset, decision entities.Decision) {
	if uc.Strikes == nil || strings.TrimSpace(asset.AuthorID) == "" {
		return
	}
	evidence := strings.TrimSpace(asset.ImageURL)
	if evidence == "" {
		evidence = "asset:" + asset.AssetID
	}
	err := uc.Strikes.RecordUploadViolation(ctx, ports.StrikeRequest{
		UserID:   asset.AuthorID,
		Message:  "Upload rejected: " + decision.Reason,
		Evidence: evidence,
	})
	if err != nil {
		logger.Error("strike record failed after rejection",
			"event", "moderation_strike_record_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "application",
			"asset_id", asset.AssetID,
			"author_id", asset.AuthorID,
			"error", err.Error(),
		)
	}
}

func (uc ModerateAssetUseCase) appendAudit(
	ctx context.Context,
	logger *slog.Logger,
	asset entities.Asset,
	decision entities.Decision,
	triggerEventID string,
) {
	if uc.Audit == nil {
		return
	}
	details := map[string]any{
		"author_id":  asset.AuthorID,
		"stage":      string(decision.Stage),
		"confidence": decision.Confidence,
		"image_url":  asset.ImageURL,
		"verdicts":   verdictDetails(decision.Verdicts),
	}
	if decision.Category != "" {
		details["category"] = decision.Category
	}
	if decision.Rejected() {
		details["reason"] = decision.Reason
	}
	if strings.TrimSpace(triggerEventID) != "" {
		details["trigger_event_id"] = strings.TrimSpace(triggerEventID)
	}
	if err := uc.Audit.AppendAudit(ctx, ports.AuditRecord{
		ActorID:  systemActorID,
		Action:   decision.AuditAction,
		TargetID: asset.AssetID,
		Details:  details,
	}); err != nil {
		logger.Warn("audit append failed after decision",
			"event", "moderation_audit_append_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "application",
			"asset_id", asset.AssetID,
			"action", decision.AuditAction,
			"error", err.Error(),
		)
	}
}

func (uc ModerateAssetUseCase) textTimeout() time.Duration {
	if uc.TextTimeout <= 0 {
		return 3 * time.Second
	}
	return uc.TextTimeout
}

func (uc ModerateAssetUseCase) imageTimeout() time.Duration {
	if uc.ImageTimeout <= 0 {
		return 10 * time.Second
	}
	return uc.ImageTimeout
}

func (uc ModerateAssetUseCase) leaseTTL() time.Duration {
	if uc.LeaseTTL > 0 {
		return uc.LeaseTTL
	}
	return uc.textTimeout()*3 + uc.imageTimeout() + 30*time.Second
}

func skipped(asset entities.Asset, reason string) ModerateAssetResult {
	return ModerateAssetResult{
		AssetID:    asset.AssetID,
		Status:     asset.Status,
		Skipped:    true,
		SkipReason: reason,
	}
}
