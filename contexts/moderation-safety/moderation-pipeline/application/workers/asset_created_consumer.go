package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	application "warden/contexts/moderation-safety/moderation-pipeline/application"
	"warden/contexts/moderation-safety/moderation-pipeline/application/commands"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

const (
	AssetCreatedTopic    = "asset.created"
	defaultConsumerGroup = "moderation-pipeline-asset-cg"
)

type assetCreatedData struct {
	AssetID string `json:"asset_id"`
	Status  string `json:"status"`
}

// AssetCreatedConsumer runs the pipeline for every new asset. Deliveries are
// at least once; the use case makes repeats harmless. The in-process bus only
// carries local publications, so a broker adapter behind Subscriber must feed
// asset.created from the asset store.
type AssetCreatedConsumer struct {
	Subscriber    ports.EventSubscriber
	Moderate      commands.ModerateAssetUseCase
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c AssetCreatedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultConsumerGroup
	}
	if err := c.Subscriber.Subscribe(ctx, AssetCreatedTopic, group, c.Handle); err != nil {
		logger.Error("asset created subscribe failed",
			"event", "moderation_asset_consumer_subscribe_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "worker",
			"topic", AssetCreatedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("asset created consumer started",
		"event", "moderation_asset_consumer_started",
		"module", "moderation-safety/moderation-pipeline",
		"layer", "worker",
		"topic", AssetCreatedTopic,
		"consumer_group", group,
	)
	return nil
}

func (c AssetCreatedConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var data assetCreatedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		logger.Error("asset created decode failed",
			"event", "moderation_asset_consumer_decode_failed",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return nil
	}
	if strings.TrimSpace(data.AssetID) == "" {
		data.AssetID = event.PartitionKey
	}
	status := strings.ToLower(strings.TrimSpace(data.Status))
	if status != "" && status != string(entities.AssetStatusUploading) {
		return nil
	}

	result, err := c.Moderate.Execute(ctx, commands.ModerateAssetCommand{
		AssetID:        data.AssetID,
		TriggerEventID: event.EventID,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAssetNotFound) || errors.Is(err, domainerrors.ErrInvalidInput) {
			logger.Warn("asset created event ignored",
				"event", "moderation_asset_consumer_ignored",
				"module", "moderation-safety/moderation-pipeline",
				"layer", "worker",
				"event_id", event.EventID,
				"asset_id", data.AssetID,
				"error", err.Error(),
			)
			return nil
		}
		return err
	}
	if result.Skipped {
		logger.Debug("asset created event skipped",
			"event", "moderation_asset_consumer_skipped",
			"module", "moderation-safety/moderation-pipeline",
			"layer", "worker",
			"asset_id", result.AssetID,
			"skip_reason", result.SkipReason,
		)
	}
	return nil
}
