package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "warden/contexts/moderation-safety/moderation-pipeline/application"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/services"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

type RescanAssetCommand struct {
	AssetID   string
	Principal ports.Principal
}

type RescanAssetResult struct {
	AssetID string
	Status  entities.AssetStatus
	Verdict entities.Verdict
}

// RescanAssetUseCase re-runs only the image check for an asset in any state.
// It never changes the asset.
type RescanAssetUseCase struct {
	Assets       ports.AssetRepository
	Image        ports.ImageClassifier
	Audit        ports.AuditAppender
	ImageTimeout time.Duration
	Logger       *slog.Logger
}

func (uc RescanAssetUseCase) Execute(ctx context.Context, cmd RescanAssetCommand) (RescanAssetResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !entities.IsPrivilegedRole(cmd.Principal.Role) {
		return RescanAssetResult{}, domainerrors.ErrForbidden
	}
	asset, err := uc.Assets.GetAsset(ctx, strings.TrimSpace(cmd.AssetID))
	if err != nil {
		return RescanAssetResult{}, err
	}
	if err := services.ValidateImageURL(asset.ImageURL); err != nil {
		return RescanAssetResult{}, err
	}

	timeout := uc.ImageTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	imageCtx, cancel := context.WithTimeout(ctx, timeout)
	verdict, err := uc.Image.Check(imageCtx, asset.ImageURL)
	cancel()
	if err != nil {
		logger.Warn("rescan image check failed",
			"event", "moderation_rescan_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "application",
			"asset_id", asset.AssetID,
			"actor_id", cmd.Principal.UserID,
			"error", err.Error(),
		)
		return RescanAssetResult{}, err
	}

	if uc.Audit != nil {
		if err := uc.Audit.AppendAudit(ctx, ports.AuditRecord{
			ActorID:  strings.TrimSpace(cmd.Principal.UserID),
			Action:   entities.ActionAssetRescanned,
			TargetID: asset.AssetID,
			Details: map[string]any{
				"status":     string(asset.Status),
				"flagged":    verdict.IsFlagged,
				"confidence": verdict.Confidence,
				"category":   verdict.Category,
				"reason":     verdict.Reason,
			},
		}); err != nil {
			logger.Warn("rescan audit append failed",
				"event", "moderation_rescan_audit_failed",
				"module", "moderation-safety/moderation-pipeline",
				"layer", "application",
				"asset_id", asset.AssetID,
				"error", err.Error(),
			)
		}
	}
	return RescanAssetResult{
		AssetID: asset.AssetID,
		Status:  asset.Status,
		Verdict: verdict,
	}, nil
}
