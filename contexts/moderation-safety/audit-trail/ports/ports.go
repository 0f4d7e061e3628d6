package ports

import (
	"context"
	"time"

	"warden/contexts/moderation-safety/audit-trail/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EntryFilter selects entries for oversight lookups. Zero values mean "any".
type EntryFilter struct {
	TargetID string
	ActorID  string
	Action   string
	Status   entities.EntryStatus
	Since    time.Time
	Until    time.Time
	Offset   int
	Limit    int
}

// Repository is insert-only by contract: there is no update or delete.
type Repository interface {
	AppendEntry(ctx context.Context, entry entities.Entry) error
	ListEntries(ctx context.Context, filter EntryFilter) ([]entities.Entry, error)
}
