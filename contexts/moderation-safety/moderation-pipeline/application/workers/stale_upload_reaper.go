package workers

import (
	"context"
	"log/slog"
	"time"

	application "warden/contexts/moderation-safety/moderation-pipeline/application"
	"warden/contexts/moderation-safety/moderation-pipeline/application/commands"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

// StaleUploadReaper re-dispatches assets stuck in uploading, for example
// after a worker died mid-run.
type StaleUploadReaper struct {
	Assets     ports.AssetRepository
	Moderate   commands.ModerateAssetUseCase
	Clock      ports.Clock
	StaleAfter time.Duration
	BatchSize  int
	Logger     *slog.Logger
}

// RunOnce returns how many stale assets reached a decision in this pass.
func (j StaleUploadReaper) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	staleAfter := j.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 50
	}

	stale, err := j.Assets.ListStaleUploads(ctx, now.Add(-staleAfter), limit)
	if err != nil {
		logger.Error("stale upload listing failed",
			"event", "moderation_stale_upload_list_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	decided := 0
	for _, asset := range stale {
		if err := ctx.Err(); err != nil {
			return decided, err
		}
		result, err := j.Moderate.Execute(ctx, commands.ModerateAssetCommand{AssetID: asset.AssetID})
		if err != nil {
			logger.Error("stale upload re-dispatch failed",
				"event", "moderation_stale_upload_failed",
				"module", "moderation-safety/moderation-pipeline",
				"layer", "worker",
				"asset_id", asset.AssetID,
				"error", err.Error(),
			)
			continue
		}
		if !result.Skipped {
			decided++
		}
	}
	if len(stale) > 0 {
		logger.Info("stale upload sweep completed",
			"event", "moderation_stale_upload_completed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "worker",
			"candidate_count", len(stale),
			"decided_count", decided,
		)
	}
	return decided, nil
}
