package queries

import (
	"context"
	"strings"
	"time"

	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

type Standing struct {
	Account        entities.UserAccount
	ActiveWarnings map[entities.WarningCategory]int
	RecentWarnings []entities.Warning
	// BanExpired marks a timed ban past its end date that the sweep has not lifted yet.
	BanExpired bool
}

type GetStandingQuery struct {
	Ledger ports.LedgerRepository
	Clock  ports.Clock
}

func (q GetStandingQuery) Execute(ctx context.Context, userID string, recent int) (Standing, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Standing{}, domainerrors.ErrInvalidRequest
	}
	account, err := q.Ledger.GetAccount(ctx, userID)
	if err != nil {
		return Standing{}, err
	}
	counts, err := q.Ledger.CountActiveWarnings(ctx, userID)
	if err != nil {
		return Standing{}, err
	}
	for _, category := range entities.Categories {
		if _, ok := counts[category]; !ok {
			counts[category] = 0
		}
	}
	if recent <= 0 {
		recent = 20
	}
	warnings, err := q.Ledger.ListWarnings(ctx, userID, recent)
	if err != nil {
		return Standing{}, err
	}
	now := time.Now().UTC()
	if q.Clock != nil {
		now = q.Clock.Now().UTC()
	}
	return Standing{
		Account:        account,
		ActiveWarnings: counts,
		RecentWarnings: warnings,
		BanExpired:     account.Ban.IsExpired(now),
	}, nil
}
