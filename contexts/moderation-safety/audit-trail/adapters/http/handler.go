package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"warden/contexts/moderation-safety/audit-trail/application"
	domainerrors "warden/contexts/moderation-safety/audit-trail/domain/errors"
	httptransport "warden/contexts/moderation-safety/audit-trail/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// ListEntriesHandler godoc
// @Summary List audit entries
// @Description Returns moderation and strike audit entries, newest first.
// @Tags audit-trail
// @Produce json
// @Security BearerAuth
// @Param target_id query string false "Target entity id"
// @Param actor_id query string false "Actor id (SYSTEM for automated actions)"
// @Param action query string false "Action tag"
// @Param status query string false "success or failed"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param cursor query string false "Cursor token"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} httptransport.ListEntriesResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /api/audit/v1/entries [get]
func (h Handler) ListEntriesHandler(ctx context.Context, req httptransport.ListEntriesRequest) (httptransport.ListEntriesResponse, error) {
	query, err := toListQuery(req)
	if err != nil {
		return httptransport.ListEntriesResponse{}, err
	}
	result, err := h.Service.List(ctx, query)
	if err != nil {
		application.ResolveLogger(h.Logger).Error("list audit entries failed",
			"event", "http_list_audit_entries_failed",
			"module", "moderation-safety/audit-trail",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.ListEntriesResponse{}, err
	}

	items := make([]httptransport.EntryDTO, 0, len(result.Items))
	for _, entry := range result.Items {
		items = append(items, httptransport.EntryDTO{
			EntryID:   entry.EntryID,
			Timestamp: entry.Timestamp.UTC().Format(time.RFC3339Nano),
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			TargetID:  entry.TargetID,
			Details:   entry.Details,
			Status:    string(entry.Status),
		})
	}
	return httptransport.ListEntriesResponse{
		Items:      items,
		NextCursor: result.NextCursor,
	}, nil
}

// ExportEntriesHandler godoc
// @Summary Export audit entries
// @Description Streams matching entries as JSON lines or CSV.
// @Tags audit-trail
// @Produce plain
// @Security BearerAuth
// @Param format query string false "jsonl (default) or csv"
// @Param target_id query string false "Target entity id"
// @Param action query string false "Action tag"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Success 200 {string} string
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /api/audit/v1/entries/export [get]
func (h Handler) ExportEntriesHandler(ctx context.Context, req httptransport.ListEntriesRequest, format string, w io.Writer) (int, error) {
	query, err := toListQuery(req)
	if err != nil {
		return 0, err
	}
	return h.Service.Export(ctx, query, format, w)
}

func toListQuery(req httptransport.ListEntriesRequest) (application.ListQuery, error) {
	since, err := parseOptionalTime(req.Since)
	if err != nil {
		return application.ListQuery{}, err
	}
	until, err := parseOptionalTime(req.Until)
	if err != nil {
		return application.ListQuery{}, err
	}
	return application.ListQuery{
		TargetID: req.TargetID,
		ActorID:  req.ActorID,
		Action:   req.Action,
		Status:   req.Status,
		Since:    since,
		Until:    until,
		Cursor:   req.Cursor,
		Limit:    req.Limit,
	}, nil
}

func parseOptionalTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domainerrors.ErrInvalidFilter
	}
	return parsed.UTC(), nil
}
