package application

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"warden/contexts/moderation-safety/audit-trail/domain/entities"
	domainerrors "warden/contexts/moderation-safety/audit-trail/domain/errors"
	"warden/contexts/moderation-safety/audit-trail/ports"
)

const (
	ExportFormatJSONL = "jsonl"
	ExportFormatCSV   = "csv"

	defaultListLimit = 50
	maxListLimit     = 200
	exportPageSize   = 500
)

type AppendCommand struct {
	ActorID  string
	Action   string
	TargetID string
	Details  map[string]any
	Status   entities.EntryStatus
}

type ListQuery struct {
	TargetID string
	ActorID  string
	Action   string
	Status   string
	Since    time.Time
	Until    time.Time
	Cursor   string
	Limit    int
}

type ListResult struct {
	Items      []entities.Entry
	NextCursor string
}

type Service struct {
	Repo        ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Append records one entry. It never reads or rewrites existing rows.
func (s Service) Append(ctx context.Context, cmd AppendCommand) (entities.Entry, error) {
	logger := ResolveLogger(s.Logger)
	entryID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Entry{}, err
	}
	entry, err := entities.NewEntry(entryID, cmd.ActorID, cmd.Action, cmd.TargetID, cmd.Details, cmd.Status, s.now())
	if err != nil {
		return entities.Entry{}, err
	}
	if err := s.Repo.AppendEntry(ctx, entry); err != nil {
		logger.Error("audit append failed",
			"event", "audit_append_failed",
			"module", "moderation-safety/audit-trail",
			"layer", "application",
			"action", entry.Action,
			"target_id", entry.TargetID,
			"error", err.Error(),
		)
		return entities.Entry{}, err
	}
	logger.Debug("audit entry appended",
		"event", "audit_entry_appended",
		"module", "moderation-safety/audit-trail",
		"layer", "application",
		"entry_id", entry.EntryID,
		"action", entry.Action,
		"actor_id", entry.ActorID,
		"target_id", entry.TargetID,
	)
	return entry, nil
}

func (s Service) List(ctx context.Context, query ListQuery) (ListResult, error) {
	filter, err := buildFilter(query)
	if err != nil {
		return ListResult{}, err
	}
	filter.Offset = decodeCursor(query.Cursor)

	// One extra row tells us whether another page exists.
	limit := filter.Limit
	filter.Limit = limit + 1
	items, err := s.Repo.ListEntries(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		next = encodeCursor(filter.Offset + limit)
	}
	return ListResult{Items: items, NextCursor: next}, nil
}

// Export streams every entry matching the query to w, newest first.
func (s Service) Export(ctx context.Context, query ListQuery, format string, w io.Writer) (int, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatJSONL
	}
	if format != ExportFormatJSONL && format != ExportFormatCSV {
		return 0, domainerrors.ErrUnsupportedFormat
	}
	filter, err := buildFilter(query)
	if err != nil {
		return 0, err
	}

	var (
		csvWriter *csv.Writer
		encoder   *json.Encoder
	)
	if format == ExportFormatCSV {
		csvWriter = csv.NewWriter(w)
		if err := csvWriter.Write([]string{"entry_id", "timestamp", "actor_id", "action", "target_id", "status", "details"}); err != nil {
			return 0, err
		}
	} else {
		encoder = json.NewEncoder(w)
	}

	written := 0
	filter.Limit = exportPageSize
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		page, err := s.Repo.ListEntries(ctx, filter)
		if err != nil {
			return written, err
		}
		for _, entry := range page {
			if csvWriter != nil {
				details, err := json.Marshal(entry.Details)
				if err != nil {
					return written, err
				}
				if err := csvWriter.Write([]string{
					entry.EntryID,
					entry.Timestamp.UTC().Format(time.RFC3339Nano),
					entry.ActorID,
					entry.Action,
					entry.TargetID,
					string(entry.Status),
					string(details),
				}); err != nil {
					return written, err
				}
			} else if err := encoder.Encode(toExportRecord(entry)); err != nil {
				return written, err
			}
			written++
		}
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += len(page)
	}

	if csvWriter != nil {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return written, err
		}
	}

	ResolveLogger(s.Logger).Info("audit export completed",
		"event", "audit_export_completed",
		"module", "moderation-safety/audit-trail",
		"layer", "application",
		"format", format,
		"entry_count", written,
	)
	return written, nil
}

type exportRecord struct {
	EntryID   string         `json:"entry_id"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	TargetID  string         `json:"target_id"`
	Status    string         `json:"status"`
	Details   map[string]any `json:"details"`
}

func toExportRecord(entry entities.Entry) exportRecord {
	return exportRecord{
		EntryID:   entry.EntryID,
		Timestamp: entry.Timestamp.UTC(),
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		TargetID:  entry.TargetID,
		Status:    string(entry.Status),
		Details:   entry.Details,
	}
}

func buildFilter(query ListQuery) (ports.EntryFilter, error) {
	status := entities.EntryStatus(strings.ToLower(strings.TrimSpace(query.Status)))
	switch status {
	case "", entities.EntryStatusSuccess, entities.EntryStatusFailed:
	default:
		return ports.EntryFilter{}, domainerrors.ErrInvalidFilter
	}
	if !query.Since.IsZero() && !query.Until.IsZero() && query.Until.Before(query.Since) {
		return ports.EntryFilter{}, domainerrors.ErrInvalidFilter
	}
	if query.Limit < 0 {
		return ports.EntryFilter{}, domainerrors.ErrInvalidFilter
	}
	limit := query.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return ports.EntryFilter{
		TargetID: strings.TrimSpace(query.TargetID),
		ActorID:  strings.TrimSpace(query.ActorID),
		Action:   strings.ToUpper(strings.TrimSpace(query.Action)),
		Status:   status,
		Since:    query.Since,
		Until:    query.Until,
		Limit:    limit,
	}, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func decodeCursor(cursor string) int {
	if strings.TrimSpace(cursor) == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}
