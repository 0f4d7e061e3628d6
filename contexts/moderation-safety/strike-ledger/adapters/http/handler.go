package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "warden/contexts/moderation-safety/strike-ledger/application"
	"warden/contexts/moderation-safety/strike-ledger/application/commands"
	"warden/contexts/moderation-safety/strike-ledger/application/queries"
	"warden/contexts/moderation-safety/strike-ledger/application/workers"
	"warden/contexts/moderation-safety/strike-ledger/domain/entities"
	domainerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	"warden/contexts/moderation-safety/strike-ledger/ports"
	httptransport "warden/contexts/moderation-safety/strike-ledger/transport/http"
)

type Handler struct {
	RecordWarning commands.RecordWarningUseCase
	ManualBan     commands.ManualBanUseCase
	ManualUnban   commands.ManualUnbanUseCase
	Standing      queries.GetStandingQuery
	Access        queries.CheckAccessQuery
	Sweep         workers.BanExpirySweep
	Logger        *slog.Logger
}

// RecordWarningHandler godoc
// @Summary Record a warning
// @Description Stores a strike for the user and applies an automatic ban once the category threshold is reached.
// @Tags strike-ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Param request body httptransport.RecordWarningRequest true "Warning"
// @Success 201 {object} httptransport.RecordWarningResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/trust/v1/users/{user_id}/warnings [post]
func (h Handler) RecordWarningHandler(
	ctx context.Context,
	actor ports.Actor,
	userID string,
	req httptransport.RecordWarningRequest,
) (httptransport.RecordWarningResponse, error) {
	if !entities.IsPrivilegedRole(actor.Role) {
		return httptransport.RecordWarningResponse{}, domainerrors.ErrForbidden
	}
	outcome, err := h.RecordWarning.Execute(ctx, commands.RecordWarningCommand{
		UserID:   userID,
		Category: req.Category,
		Message:  req.Message,
		Evidence: req.Evidence,
		ActorID:  actor.UserID,
	})
	if err != nil {
		h.logFailure("record_warning", userID, err)
		return httptransport.RecordWarningResponse{}, err
	}
	return httptransport.RecordWarningResponse{
		WarningID:   outcome.Warning.WarningID,
		UserID:      outcome.Warning.UserID,
		Category:    string(outcome.Warning.Category),
		StrikeCount: outcome.StrikeCount,
		Threshold:   outcome.Threshold,
		Banned:      outcome.Banned,
		BanUntil:    formatTime(outcome.BanUntil),
		BanReason:   outcome.Reason,
	}, nil
}

// GetStandingHandler godoc
// @Summary Get user standing
// @Description Returns the ban record and active warning counts per category.
// @Tags strike-ledger
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} httptransport.StandingResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/trust/v1/users/{user_id}/standing [get]
func (h Handler) GetStandingHandler(ctx context.Context, actor ports.Actor, userID string) (httptransport.StandingResponse, error) {
	if actor.UserID != userID && !entities.IsPrivilegedRole(actor.Role) {
		return httptransport.StandingResponse{}, domainerrors.ErrForbidden
	}
	standing, err := h.Standing.Execute(ctx, userID, 20)
	if err != nil {
		return httptransport.StandingResponse{}, err
	}
	counts := make(map[string]int, len(standing.ActiveWarnings))
	for category, total := range standing.ActiveWarnings {
		counts[string(category)] = total
	}
	recent := make([]httptransport.WarningDTO, 0, len(standing.RecentWarnings))
	for _, warning := range standing.RecentWarnings {
		recent = append(recent, httptransport.WarningDTO{
			WarningID: warning.WarningID,
			Category:  string(warning.Category),
			Message:   warning.Message,
			Evidence:  warning.Evidence,
			IsActive:  warning.IsActive,
			CreatedAt: warning.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	ban := toBanDTO(standing.Account.Ban)
	ban.Expired = standing.BanExpired
	return httptransport.StandingResponse{
		UserID:         standing.Account.UserID,
		Ban:            ban,
		ActiveWarnings: counts,
		RecentWarnings: recent,
	}, nil
}

// BanUserHandler godoc
// @Summary Ban a user
// @Tags strike-ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Param request body httptransport.BanRequest true "Ban"
// @Success 200 {object} httptransport.AccountResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/trust/v1/users/{user_id}/ban [post]
func (h Handler) BanUserHandler(
	ctx context.Context,
	actor ports.Actor,
	userID string,
	req httptransport.BanRequest,
) (httptransport.AccountResponse, error) {
	if req.DurationDays < 0 {
		return httptransport.AccountResponse{}, domainerrors.ErrInvalidRequest
	}
	account, err := h.ManualBan.Execute(ctx, commands.ManualBanCommand{
		Actor:    actor,
		UserID:   userID,
		Reason:   req.Reason,
		Duration: time.Duration(req.DurationDays) * 24 * time.Hour,
	})
	if err != nil {
		h.logFailure("manual_ban", userID, err)
		return httptransport.AccountResponse{}, err
	}
	return toAccountResponse(account), nil
}

// UnbanUserHandler godoc
// @Summary Lift a user's ban
// @Tags strike-ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Param request body httptransport.UnbanRequest false "Unban"
// @Success 200 {object} httptransport.AccountResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/trust/v1/users/{user_id}/unban [post]
func (h Handler) UnbanUserHandler(
	ctx context.Context,
	actor ports.Actor,
	userID string,
	req httptransport.UnbanRequest,
) (httptransport.AccountResponse, error) {
	account, err := h.ManualUnban.Execute(ctx, commands.ManualUnbanCommand{
		Actor:  actor,
		UserID: userID,
		Reason: req.Reason,
	})
	if err != nil {
		h.logFailure("manual_unban", userID, err)
		return httptransport.AccountResponse{}, err
	}
	return toAccountResponse(account), nil
}

// RunBanExpirySweepHandler godoc
// @Summary Run the ban expiry sweep
// @Description Lifts timed bans whose end date has passed. Safe to call repeatedly.
// @Tags strike-ledger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httptransport.SweepResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /api/trust/v1/sweeps/ban-expiry [post]
func (h Handler) RunBanExpirySweepHandler(ctx context.Context, actor ports.Actor) (httptransport.SweepResponse, error) {
	if !entities.IsPrivilegedRole(actor.Role) {
		return httptransport.SweepResponse{}, domainerrors.ErrForbidden
	}
	restored, err := h.Sweep.RunOnce(ctx)
	if err != nil {
		return httptransport.SweepResponse{}, err
	}
	return httptransport.SweepResponse{RestoredCount: restored}, nil
}

// CheckAccess returns ErrAccountSuspended for banned users.
func (h Handler) CheckAccess(ctx context.Context, userID string) error {
	return h.Access.Execute(ctx, userID)
}

func (h Handler) logFailure(operation string, userID string, err error) {
	application.ResolveLogger(h.Logger).Warn("strike ledger request failed",
		"event", "http_strike_ledger_request_failed",
		"module", "moderation-safety/strike-ledger",
		"layer", "transport",
		"operation", operation,
		"user_id", userID,
		"error", err.Error(),
	)
}

func toAccountResponse(account entities.UserAccount) httptransport.AccountResponse {
	return httptransport.AccountResponse{
		UserID: account.UserID,
		Role:   account.Role,
		Ban:    toBanDTO(account.Ban),
	}
}

func toBanDTO(ban entities.BanRecord) httptransport.BanDTO {
	return httptransport.BanDTO{
		IsBanned:  ban.IsBanned,
		Reason:    ban.Reason,
		BanUntil:  formatTime(ban.BanUntil),
		BannedAt:  formatTime(ban.BannedAt),
		Permanent: ban.IsPermanent(),
	}
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
