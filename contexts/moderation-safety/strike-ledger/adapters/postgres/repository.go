package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	"warden/contexts/moderation-safety/strike-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

func (r *Repository) GetAccount(ctx context.Context, userID string) (entities.UserAccount, error) {
	var row accountModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.UserAccount{}, domainerrors.ErrUserNotFound
		}
		return entities.UserAccount{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) RecordWarning(
	ctx context.Context,
	warning entities.Warning,
	decide ports.BanDecider,
) (ports.RecordedWarning, error) {
	var result ports.RecordedWarning
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account accountModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", warning.UserID).
			First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUserNotFound
			}
			return err
		}

		var active int64
		if err := tx.Model(&warningModel{}).
			Where("user_id = ? AND category = ? AND is_active = ?", warning.UserID, string(warning.Category), true).
			Count(&active).Error; err != nil {
			return err
		}

		row := warningModelFromEntity(warning)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidRequest
			}
			return err
		}

		result = ports.RecordedWarning{
			Warning:     warning,
			StrikeCount: int(active) + 1,
		}
		if decide != nil {
			if ban, apply := decide(account.toEntity(), result.StrikeCount); apply {
				account.applyBan(ban)
				account.UpdatedAt = warning.CreatedAt.UTC()
				if err := tx.Save(&account).Error; err != nil {
					return err
				}
				result.BanApplied = true
			}
		}
		result.Account = account.toEntity()
		return nil
	})
	if err != nil {
		return ports.RecordedWarning{}, err
	}
	return result, nil
}

func (r *Repository) CountActiveWarnings(ctx context.Context, userID string) (map[entities.WarningCategory]int, error) {
	type categoryCount struct {
		Category string
		Total    int64
	}
	var rows []categoryCount
	if err := r.db.WithContext(ctx).
		Model(&warningModel{}).
		Select("category, COUNT(*) AS total").
		Where("user_id = ? AND is_active = ?", userID, true).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[entities.WarningCategory]int, len(rows))
	for _, row := range rows {
		counts[entities.WarningCategory(row.Category)] = int(row.Total)
	}
	return counts, nil
}

func (r *Repository) ListWarnings(ctx context.Context, userID string, limit int) ([]entities.Warning, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true})
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []warningModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Warning, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SetBan(ctx context.Context, userID string, ban entities.BanRecord, updatedAt time.Time) (entities.UserAccount, error) {
	return r.updateBan(ctx, userID, func(account *accountModel) {
		account.applyBan(ban)
		account.UpdatedAt = updatedAt.UTC()
	})
}

func (r *Repository) ClearBan(ctx context.Context, userID string, updatedAt time.Time) (entities.UserAccount, error) {
	return r.updateBan(ctx, userID, func(account *accountModel) {
		account.applyBan(entities.BanRecord{})
		account.UpdatedAt = updatedAt.UTC()
	})
}

func (r *Repository) updateBan(ctx context.Context, userID string, mutate func(*accountModel)) (entities.UserAccount, error) {
	var result entities.UserAccount
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account accountModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUserNotFound
			}
			return err
		}
		mutate(&account)
		if err := tx.Save(&account).Error; err != nil {
			return err
		}
		result = account.toEntity()
		return nil
	})
	return result, err
}

func (r *Repository) ListExpiredBans(ctx context.Context, now time.Time, limit int) ([]entities.UserAccount, error) {
	tx := r.db.WithContext(ctx).
		Where("is_banned = ? AND ban_until IS NOT NULL AND ban_until < ?", true, now.UTC()).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "ban_until"}})
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []accountModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.UserAccount, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ClearExpiredBan(ctx context.Context, userID string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("user_id = ? AND is_banned = ? AND ban_until IS NOT NULL AND ban_until < ?", userID, true, now.UTC()).
		Updates(map[string]any{
			"is_banned":  false,
			"ban_reason": "",
			"ban_until":  nil,
			"banned_at":  nil,
			"updated_at": now.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// PrincipalStore flips auth_principals.login_disabled.
type PrincipalStore struct {
	db *gorm.DB
}

func NewPrincipalStore(db *gorm.DB) *PrincipalStore {
	return &PrincipalStore{db: db}
}

func (s *PrincipalStore) Disable(ctx context.Context, userID string) error {
	return s.setDisabled(ctx, userID, true)
}

func (s *PrincipalStore) Enable(ctx context.Context, userID string) error {
	return s.setDisabled(ctx, userID, false)
}

func (s *PrincipalStore) setDisabled(ctx context.Context, userID string, disabled bool) error {
	row := principalModel{
		UserID:        userID,
		LoginDisabled: disabled,
		UpdatedAt:     time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"login_disabled", "updated_at"}),
	}).Create(&row).Error
}

// NotificationStore writes in-app notifications to user_notifications.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Notify(ctx context.Context, notification ports.Notification) error {
	row := notificationModel{
		NotificationID: uuid.NewString(),
		UserID:         notification.UserID,
		Type:           notification.Type,
		Title:          notification.Title,
		Message:        notification.Message,
		CreatedAt:      time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

type accountModel struct {
	UserID    string     `gorm:"column:user_id;primaryKey"`
	Role      string     `gorm:"column:role"`
	IsBanned  bool       `gorm:"column:is_banned"`
	BanReason string     `gorm:"column:ban_reason"`
	BanUntil  *time.Time `gorm:"column:ban_until;index"`
	BannedAt  *time.Time `gorm:"column:banned_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "user_accounts"
}

func (m *accountModel) applyBan(ban entities.BanRecord) {
	m.IsBanned = ban.IsBanned
	m.BanReason = ban.Reason
	m.BanUntil = utcPtr(ban.BanUntil)
	m.BannedAt = utcPtr(ban.BannedAt)
}

func (m accountModel) toEntity() entities.UserAccount {
	return entities.UserAccount{
		UserID: m.UserID,
		Role:   m.Role,
		Ban: entities.BanRecord{
			IsBanned: m.IsBanned,
			Reason:   m.BanReason,
			BanUntil: utcPtr(m.BanUntil),
			BannedAt: utcPtr(m.BannedAt),
		},
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type warningModel struct {
	WarningID string    `gorm:"column:warning_id;primaryKey"`
	UserID    string    `gorm:"column:user_id;index"`
	Category  string    `gorm:"column:category"`
	Message   string    `gorm:"column:message"`
	Evidence  string    `gorm:"column:evidence"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (warningModel) TableName() string {
	return "user_warnings"
}

func warningModelFromEntity(warning entities.Warning) warningModel {
	return warningModel{
		WarningID: warning.WarningID,
		UserID:    warning.UserID,
		Category:  string(warning.Category),
		Message:   warning.Message,
		Evidence:  warning.Evidence,
		IsActive:  warning.IsActive,
		CreatedAt: warning.CreatedAt.UTC(),
	}
}

func (m warningModel) toEntity() entities.Warning {
	return entities.Warning{
		WarningID: m.WarningID,
		UserID:    m.UserID,
		Category:  entities.WarningCategory(m.Category),
		Message:   m.Message,
		Evidence:  m.Evidence,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type principalModel struct {
	UserID        string    `gorm:"column:user_id;primaryKey"`
	LoginDisabled bool      `gorm:"column:login_disabled"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (principalModel) TableName() string {
	return "auth_principals"
}

type notificationModel struct {
	NotificationID string     `gorm:"column:notification_id;primaryKey"`
	UserID         string     `gorm:"column:user_id;index"`
	Type           string     `gorm:"column:type"`
	Title          string     `gorm:"column:title"`
	Message        string     `gorm:"column:message"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	ReadAt         *time.Time `gorm:"column:read_at"`
}

func (notificationModel) TableName() string {
	return "user_notifications"
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.LedgerRepository = (*Repository)(nil)
var _ ports.AuthPrincipalStore = (*PrincipalStore)(nil)
var _ ports.NotificationSink = (*NotificationStore)(nil)

// Models lists the gorm models owned by the strike ledger, for schema migration.
func Models() []any {
	return []any{&accountModel{}, &warningModel{}, &principalModel{}, &notificationModel{}}
}
