package ports

import (
	"context"
	"time"

	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	contractsv1 "warden/contracts/gen/events/v1"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Principal is the authenticated caller of an administrative operation.
type Principal struct {
	UserID string
	Role   string
}

type ImageClassifier interface {
	Check(ctx context.Context, imageURL string) (entities.Verdict, error)
}

type TextClassifier interface {
	Check(ctx context.Context, text string, field string) (entities.Verdict, error)
}

type EventEnvelope = contractsv1.Envelope

type AssetRepository interface {
	GetAsset(ctx context.Context, assetID string) (entities.Asset, error)
	// ApplyDecision persists a decided asset only while the stored row is
	// still uploading, together with its outbox event. applied is false when
	// another run already decided the asset.
	ApplyDecision(ctx context.Context, asset entities.Asset, event EventEnvelope) (applied bool, err error)
	ListStaleUploads(ctx context.Context, createdBefore time.Time, limit int) ([]entities.Asset, error)
}

// RunLease keeps two moderation runs for the same asset from overlapping.
type RunLease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, key string, token string) error
}

type StrikeRequest struct {
	UserID   string
	Message  string
	Evidence string
}

// StrikeRecorder files one upload_abuse warning per rejected upload.
type StrikeRecorder interface {
	RecordUploadViolation(ctx context.Context, request StrikeRequest) error
}

type AuditRecord struct {
	ActorID  string
	Action   string
	TargetID string
	Details  map[string]any
}

type AuditAppender interface {
	AppendAudit(ctx context.Context, record AuditRecord) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
