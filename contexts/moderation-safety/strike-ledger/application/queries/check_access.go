package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

// CheckAccessQuery gates authenticated callers on their ban state. Users
// without a ledger account have no strikes and are allowed through.
type CheckAccessQuery struct {
	Ledger ports.LedgerRepository
}

func (q CheckAccessQuery) Execute(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	account, err := q.Ledger.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !account.Ban.IsBanned {
		return nil
	}
	reason := strings.TrimSpace(account.Ban.Reason)
	if reason == "" {
		reason = "policy violation"
	}
	return fmt.Errorf("%w: your account has been suspended (%s)", domainerrors.ErrAccountSuspended, reason)
}
