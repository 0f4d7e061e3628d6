package commands

import (
	"encoding/json"
	"time"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

const (
	EventAssetPublished = "asset.published"
	EventAssetRejected  = "asset.rejected"
)

func newAssetEnvelope(
	eventID string,
	eventType string,
	assetID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "moderation-pipeline",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "asset_id",
		PartitionKey:     assetID,
		Data:             payload,
	}, nil
}

func decisionEvent(asset entities.Asset, decision entities.Decision) (string, map[string]any) {
	data := map[string]any{
		"asset_id":   asset.AssetID,
		"author_id":  asset.AuthorID,
		"status":     string(asset.Status),
		"stage":      string(decision.Stage),
		"confidence": decision.Confidence,
	}
	if decision.Rejected() {
		data["reason"] = decision.Reason
		data["category"] = decision.Category
		return EventAssetRejected, data
	}
	return EventAssetPublished, data
}

func verdictDetails(verdicts []entities.Verdict) []map[string]any {
	items := make([]map[string]any, 0, len(verdicts))
	for _, verdict := range verdicts {
		item := map[string]any{
			"source":     string(verdict.Source),
			"field":      verdict.Field,
			"flagged":    verdict.IsFlagged,
			"confidence": verdict.Confidence,
		}
		if verdict.Category != "" {
			item["category"] = verdict.Category
		}
		if verdict.Reason != "" {
			item["reason"] = verdict.Reason
		}
		if verdict.Degraded {
			item["degraded"] = true
		}
		items = append(items, item)
	}
	return items
}
