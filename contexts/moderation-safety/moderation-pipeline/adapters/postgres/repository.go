package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository reads marketplace assets and records moderation decisions.
// Asset rows are created by the marketplace; this adapter only updates the
// status and moderation columns.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetAsset(ctx context.Context, assetID string) (entities.Asset, error) {
	var row assetModel
	if err := r.db.WithContext(ctx).Where("asset_id = ?", strings.TrimSpace(assetID)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Asset{}, domainerrors.ErrAssetNotFound
		}
		return entities.Asset{}, err
	}
	return row.toEntity(r.logger), nil
}

func (r *Repository) ApplyDecision(ctx context.Context, asset entities.Asset, event ports.EventEnvelope) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&assetModel{}).
			Where("asset_id = ? AND status = ?", asset.AssetID, string(entities.AssetStatusUploading)).
			Updates(map[string]any{
				"status":                      string(asset.Status),
				"moderation_confidence":       asset.Moderation.Confidence,
				"moderation_category":         asset.Moderation.Category,
				"moderation_rejection_reason": asset.Moderation.RejectionReason,
				"moderation_stage":            string(asset.Moderation.Stage),
				"moderation_decided_at":       asset.Moderation.DecidedAt,
				"updated_at":                  asset.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := insertOutboxEnvelopeTx(tx, event); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *Repository) ListStaleUploads(ctx context.Context, createdBefore time.Time, limit int) ([]entities.Asset, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []assetModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(entities.AssetStatusUploading), createdBefore.UTC()).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Asset, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(r.logger))
	}
	return items, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidInput
	}
	return nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

type assetModel struct {
	AssetID                   string         `gorm:"column:asset_id;primaryKey"`
	AuthorID                  string         `gorm:"column:author_id;index"`
	Name                      string         `gorm:"column:name"`
	Description               string         `gorm:"column:description"`
	Tags                      datatypes.JSON `gorm:"column:tags;type:jsonb"`
	ImageURL                  string         `gorm:"column:image_url"`
	Status                    string         `gorm:"column:status;index"`
	ModerationConfidence      float64        `gorm:"column:moderation_confidence"`
	ModerationCategory        string         `gorm:"column:moderation_category"`
	ModerationRejectionReason string         `gorm:"column:moderation_rejection_reason"`
	ModerationStage           string         `gorm:"column:moderation_stage"`
	ModerationDecidedAt       *time.Time     `gorm:"column:moderation_decided_at"`
	CreatedAt                 time.Time      `gorm:"column:created_at"`
	UpdatedAt                 time.Time      `gorm:"column:updated_at"`
}

func (assetModel) TableName() string {
	return "marketplace_assets"
}

func (m assetModel) toEntity(logger *slog.Logger) entities.Asset {
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			logger.Warn("asset tags decode failed",
				"event", "moderation_asset_tags_decode_failed",
				"module", "moderation-safety/moderation-pipeline",
				"layer", "adapter",
				"asset_id", m.AssetID,
				"error", err.Error(),
			)
		}
	}
	var decidedAt *time.Time
	if m.ModerationDecidedAt != nil {
		value := m.ModerationDecidedAt.UTC()
		decidedAt = &value
	}
	return entities.Asset{
		AssetID:     m.AssetID,
		AuthorID:    m.AuthorID,
		Name:        m.Name,
		Description: m.Description,
		Tags:        tags,
		ImageURL:    m.ImageURL,
		Status:      entities.AssetStatus(m.Status),
		Moderation: entities.ModerationRecord{
			Confidence:      m.ModerationConfidence,
			Category:        m.ModerationCategory,
			RejectionReason: m.ModerationRejectionReason,
			Stage:           entities.DecisionStage(m.ModerationStage),
			DecidedAt:       decidedAt,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "moderation_outbox"
}

var _ ports.AssetRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)

// Models lists the gorm models owned by the moderation pipeline, for schema migration.
func Models() []any {
	return []any{&assetModel{}, &outboxModel{}}
}
