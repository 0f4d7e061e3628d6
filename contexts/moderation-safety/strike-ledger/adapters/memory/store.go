package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

type Store struct {
	mu            sync.Mutex
	accounts      map[string]entities.UserAccount
	warnings      []entities.Warning
	disabled      map[string]bool
	notifications []ports.Notification
	failClear     map[string]error
	sequence      uint64
}

func NewStore() *Store {
	return &Store{
		accounts:  map[string]entities.UserAccount{},
		disabled:  map[string]bool{},
		failClear: map[string]error{},
	}
}

// PutAccount seeds or replaces an account.
func (s *Store) PutAccount(account entities.UserAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.UserID] = cloneAccount(account)
}

// FailClearExpiredBan makes ClearExpiredBan return err for one user.
func (s *Store) FailClearExpiredBan(userID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failClear[userID] = err
}

func (s *Store) GetAccount(_ context.Context, userID string) (entities.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return entities.UserAccount{}, domainerrors.ErrUserNotFound
	}
	return cloneAccount(account), nil
}

func (s *Store) RecordWarning(
	_ context.Context,
	warning entities.Warning,
	decide ports.BanDecider,
) (ports.RecordedWarning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[warning.UserID]
	if !ok {
		return ports.RecordedWarning{}, domainerrors.ErrUserNotFound
	}

	count := 0
	for _, item := range s.warnings {
		if item.UserID == warning.UserID && item.Category == warning.Category && item.IsActive {
			count++
		}
	}
	s.warnings = append(s.warnings, warning)
	count++

	result := ports.RecordedWarning{Warning: warning, StrikeCount: count}
	if decide != nil {
		if ban, apply := decide(cloneAccount(account), count); apply {
			account.Ban = ban
			account.UpdatedAt = warning.CreatedAt
			s.accounts[account.UserID] = account
			result.BanApplied = true
		}
	}
	result.Account = cloneAccount(account)
	return result, nil
}

func (s *Store) CountActiveWarnings(_ context.Context, userID string) (map[entities.WarningCategory]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[entities.WarningCategory]int{}
	for _, item := range s.warnings {
		if item.UserID == userID && item.IsActive {
			counts[item.Category]++
		}
	}
	return counts, nil
}

func (s *Store) ListWarnings(_ context.Context, userID string, limit int) ([]entities.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Warning, 0)
	for i := len(s.warnings) - 1; i >= 0; i-- {
		if s.warnings[i].UserID != userID {
			continue
		}
		items = append(items, s.warnings[i])
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) SetBan(_ context.Context, userID string, ban entities.BanRecord, updatedAt time.Time) (entities.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return entities.UserAccount{}, domainerrors.ErrUserNotFound
	}
	account.Ban = ban
	account.UpdatedAt = updatedAt
	s.accounts[userID] = account
	return cloneAccount(account), nil
}

func (s *Store) ClearBan(_ context.Context, userID string, updatedAt time.Time) (entities.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return entities.UserAccount{}, domainerrors.ErrUserNotFound
	}
	account.Ban = entities.BanRecord{}
	account.UpdatedAt = updatedAt
	s.accounts[userID] = account
	return cloneAccount(account), nil
}

func (s *Store) ListExpiredBans(_ context.Context, now time.Time, limit int) ([]entities.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.UserAccount, 0)
	for _, account := range s.accounts {
		if account.Ban.IsExpired(now) {
			items = append(items, cloneAccount(account))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Ban.BanUntil.Before(*items[j].Ban.BanUntil)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ClearExpiredBan(_ context.Context, userID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failClear[userID]; err != nil {
		return false, err
	}
	account, ok := s.accounts[userID]
	if !ok || !account.Ban.IsExpired(now) {
		return false, nil
	}
	account.Ban = entities.BanRecord{}
	account.UpdatedAt = now
	s.accounts[userID] = account
	return true, nil
}

func (s *Store) Disable(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[userID] = true
	return nil
}

func (s *Store) Enable(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.disabled, userID)
	return nil
}

// LoginDisabled reports the auth principal flag for tests.
func (s *Store) LoginDisabled(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled[userID]
}

func (s *Store) Notify(_ context.Context, notification ports.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification)
	return nil
}

// Notifications returns notifications sent to userID in order.
func (s *Store) Notifications(userID string) []ports.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.Notification, 0)
	for _, item := range s.notifications {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("warning-%d", n), nil
}

func cloneAccount(account entities.UserAccount) entities.UserAccount {
	if account.Ban.BanUntil != nil {
		until := *account.Ban.BanUntil
		account.Ban.BanUntil = &until
	}
	if account.Ban.BannedAt != nil {
		at := *account.Ban.BannedAt
		account.Ban.BannedAt = &at
	}
	return account
}

var _ ports.LedgerRepository = (*Store)(nil)
var _ ports.AuthPrincipalStore = (*Store)(nil)
var _ ports.NotificationSink = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
