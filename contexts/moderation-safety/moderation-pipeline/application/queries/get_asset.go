package queries

import (
	"context"
	"strings"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

type GetAssetModerationQuery struct {
	Assets ports.AssetRepository
}

func (q GetAssetModerationQuery) Execute(ctx context.Context, assetID string) (entities.Asset, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return entities.Asset{}, domainerrors.ErrInvalidInput
	}
	return q.Assets.GetAsset(ctx, assetID)
}
