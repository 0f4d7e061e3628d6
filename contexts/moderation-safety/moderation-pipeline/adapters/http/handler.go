package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "warden/contexts/moderation-safety/moderation-pipeline/application"
	"warden/contexts/moderation-safety/moderation-pipeline/application/commands"
	"warden/contexts/moderation-safety/moderation-pipeline/application/queries"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
	httptransport "warden/contexts/moderation-safety/moderation-pipeline/transport/http"
)

type Handler struct {
	Moderate commands.ModerateAssetUseCase
	Rescan   commands.RescanAssetUseCase
	GetAsset queries.GetAssetModerationQuery
	Logger   *slog.Logger
}

// AssetCreatedHandler godoc
// @Summary Trigger moderation for a new asset
// @Description Webhook for the asset store. Assets not in uploading status are skipped.
// @Tags moderation-pipeline
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param asset_id path string true "Asset ID"
// @Param request body httptransport.AssetCreatedRequest false "Trigger metadata"
// @Success 200 {object} httptransport.ModerateAssetResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/moderation/v1/assets/{asset_id}/created [post]
func (h Handler) AssetCreatedHandler(
	ctx context.Context,
	assetID string,
	req httptransport.AssetCreatedRequest,
) (httptransport.ModerateAssetResponse, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "" && status != string(entities.AssetStatusUploading) {
		return httptransport.ModerateAssetResponse{
			AssetID:    assetID,
			Status:     status,
			Skipped:    true,
			SkipReason: commands.SkipNotUploading,
		}, nil
	}
	result, err := h.Moderate.Execute(ctx, commands.ModerateAssetCommand{
		AssetID:        assetID,
		TriggerEventID: req.EventID,
	})
	if err != nil {
		application.ResolveLogger(h.Logger).Error("asset moderation trigger failed",
			"event", "http_moderation_trigger_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "transport",
			"asset_id", assetID,
			"error", err.Error(),
		)
		return httptransport.ModerateAssetResponse{}, err
	}
	response := httptransport.ModerateAssetResponse{
		AssetID:    result.AssetID,
		Status:     string(result.Status),
		Skipped:    result.Skipped,
		SkipReason: result.SkipReason,
	}
	if !result.Skipped {
		moderation := httptransport.ModerationDTO{
			Confidence: result.Decision.Confidence,
			Category:   result.Decision.Category,
			Stage:      string(result.Decision.Stage),
		}
		if result.Decision.Rejected() {
			moderation.RejectionReason = result.Decision.Reason
		}
		response.Moderation = &moderation
	}
	return response, nil
}

// RescanAssetHandler godoc
// @Summary Re-scan an asset image
// @Description Runs only the image check and returns the verdict. The asset is not changed.
// @Tags moderation-pipeline
// @Produce json
// @Security BearerAuth
// @Param asset_id path string true "Asset ID"
// @Success 200 {object} httptransport.RescanResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Router /api/moderation/v1/assets/{asset_id}/rescan [post]
func (h Handler) RescanAssetHandler(ctx context.Context, principal ports.Principal, assetID string) (httptransport.RescanResponse, error) {
	result, err := h.Rescan.Execute(ctx, commands.RescanAssetCommand{
		AssetID:   assetID,
		Principal: principal,
	})
	if err != nil {
		return httptransport.RescanResponse{}, err
	}
	return httptransport.RescanResponse{
		AssetID: result.AssetID,
		Status:  string(result.Status),
		Verdict: httptransport.VerdictDTO{
			Source:     string(result.Verdict.Source),
			IsFlagged:  result.Verdict.IsFlagged,
			Confidence: result.Verdict.Confidence,
			Category:   result.Verdict.Category,
			Reason:     result.Verdict.Reason,
		},
	}, nil
}

// GetAssetModerationHandler godoc
// @Summary Get asset moderation status
// @Tags moderation-pipeline
// @Produce json
// @Security BearerAuth
// @Param asset_id path string true "Asset ID"
// @Success 200 {object} httptransport.AssetModerationResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/moderation/v1/assets/{asset_id} [get]
func (h Handler) GetAssetModerationHandler(
	ctx context.Context,
	principal ports.Principal,
	assetID string,
) (httptransport.AssetModerationResponse, error) {
	asset, err := h.GetAsset.Execute(ctx, assetID)
	if err != nil {
		return httptransport.AssetModerationResponse{}, err
	}
	if asset.AuthorID != principal.UserID && !entities.IsPrivilegedRole(principal.Role) {
		return httptransport.AssetModerationResponse{}, domainerrors.ErrForbidden
	}
	moderation := httptransport.ModerationDTO{
		Confidence:      asset.Moderation.Confidence,
		Category:        asset.Moderation.Category,
		RejectionReason: asset.Moderation.RejectionReason,
		Stage:           string(asset.Moderation.Stage),
	}
	if asset.Moderation.DecidedAt != nil {
		moderation.DecidedAt = asset.Moderation.DecidedAt.UTC().Format(time.RFC3339)
	}
	return httptransport.AssetModerationResponse{
		AssetID:    asset.AssetID,
		AuthorID:   asset.AuthorID,
		Status:     string(asset.Status),
		Moderation: moderation,
		UpdatedAt:  asset.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}
