package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

type outboxRow struct {
	message   ports.OutboxMessage
	published bool
}

type leaseEntry struct {
	token     string
	expiresAt time.Time
}

type Store struct {
	mu       sync.Mutex
	assets   map[string]entities.Asset
	outbox   []outboxRow
	leases   map[string]leaseEntry
	leaseSeq uint64
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		assets: map[string]entities.Asset{},
		leases: map[string]leaseEntry{},
	}
}

// PutAsset seeds or replaces an asset, the way the document store would.
func (s *Store) PutAsset(asset entities.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if asset.Status == "" {
		asset.Status = entities.AssetStatusUploading
	}
	s.assets[asset.AssetID] = cloneAsset(asset)
}

func (s *Store) GetAsset(_ context.Context, assetID string) (entities.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return entities.Asset{}, domainerrors.ErrAssetNotFound
	}
	return cloneAsset(asset), nil
}

func (s *Store) ApplyDecision(_ context.Context, asset entities.Asset, event ports.EventEnvelope) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.assets[asset.AssetID]
	if !ok {
		return false, domainerrors.ErrAssetNotFound
	}
	if current.Status != entities.AssetStatusUploading {
		return false, nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return false, err
	}
	s.assets[asset.AssetID] = cloneAsset(asset)
	s.outbox = append(s.outbox, outboxRow{message: ports.OutboxMessage{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	}})
	return true, nil
}

func (s *Store) ListStaleUploads(_ context.Context, createdBefore time.Time, limit int) ([]entities.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Asset, 0)
	for _, asset := range s.assets {
		if asset.Status == entities.AssetStatusUploading && asset.CreatedAt.Before(createdBefore) {
			items = append(items, cloneAsset(asset))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			return nil
		}
	}
	return domainerrors.ErrInvalidInput
}

// OutboxEventTypes lists every outbox event type in write order.
func (s *Store) OutboxEventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]string, 0, len(s.outbox))
	for _, row := range s.outbox {
		items = append(items, row.message.EventType)
	}
	return items
}

func (s *Store) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if current, ok := s.leases[key]; ok && now.Before(current.expiresAt) {
		return "", false, nil
	}
	s.leaseSeq++
	token := fmt.Sprintf("lease-%d", s.leaseSeq)
	s.leases[key] = leaseEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (s *Store) Release(_ context.Context, key string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.leases[key]; ok && current.token == token {
		delete(s.leases, key)
	}
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("evt-%d", n), nil
}

func cloneAsset(asset entities.Asset) entities.Asset {
	asset.Tags = append([]string(nil), asset.Tags...)
	if asset.Moderation.DecidedAt != nil {
		decidedAt := *asset.Moderation.DecidedAt
		asset.Moderation.DecidedAt = &decidedAt
	}
	return asset
}

var _ ports.AssetRepository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.RunLease = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
