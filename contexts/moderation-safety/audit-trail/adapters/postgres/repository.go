package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"warden/contexts/moderation-safety/audit-trail/domain/entities"
	domainerrors "warden/contexts/moderation-safety/audit-trail/domain/errors"
	"warden/contexts/moderation-safety/audit-trail/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository writes to audit_log_entries. The runtime role is granted INSERT
// and SELECT only; this adapter never issues UPDATE or DELETE.
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

func (r *Repository) AppendEntry(ctx context.Context, entry entities.Entry) error {
	row := entryModelFromEntity(entry)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateEntry
		}
		return err
	}
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, filter ports.EntryFilter) ([]entities.Entry, error) {
	tx := r.db.WithContext(ctx).Model(&entryModel{})
	if filter.TargetID != "" {
		tx = tx.Where("target_id = ?", filter.TargetID)
	}
	if filter.ActorID != "" {
		tx = tx.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		tx = tx.Where("action = ?", filter.Action)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if !filter.Since.IsZero() {
		tx = tx.Where("occurred_at >= ?", filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		tx = tx.Where("occurred_at <= ?", filter.Until.UTC())
	}
	tx = tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "occurred_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "seq"}, Desc: true})
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []entryModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Entry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type entryModel struct {
	Seq        int64             `gorm:"column:seq;autoIncrement;<-:false"`
	EntryID    string            `gorm:"column:entry_id;primaryKey"`
	OccurredAt time.Time         `gorm:"column:occurred_at;index"`
	ActorID    string            `gorm:"column:actor_id"`
	Action     string            `gorm:"column:action;index"`
	TargetID   string            `gorm:"column:target_id;index"`
	Details    datatypes.JSONMap `gorm:"column:details;type:jsonb"`
	Status     string            `gorm:"column:status"`
}

func (entryModel) TableName() string {
	return "audit_log_entries"
}

func entryModelFromEntity(entry entities.Entry) entryModel {
	details := datatypes.JSONMap{}
	for key, value := range entry.Details {
		details[key] = value
	}
	return entryModel{
		EntryID:    entry.EntryID,
		OccurredAt: entry.Timestamp.UTC(),
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetID:   entry.TargetID,
		Details:    details,
		Status:     string(entry.Status),
	}
}

func (m entryModel) toEntity() entities.Entry {
	details := make(map[string]any, len(m.Details))
	for key, value := range m.Details {
		details[key] = value
	}
	return entities.Entry{
		EntryID:   m.EntryID,
		Timestamp: m.OccurredAt.UTC(),
		ActorID:   m.ActorID,
		Action:    m.Action,
		TargetID:  m.TargetID,
		Details:   details,
		Status:    entities.EntryStatus(m.Status),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)

// Models lists the gorm models owned by the audit trail, for schema migration.
func Models() []any {
	return []any{&entryModel{}}
}
