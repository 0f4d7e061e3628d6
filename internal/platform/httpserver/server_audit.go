package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	auditerrors "warden/contexts/moderation-safety/audit-trail/domain/errors"
	audithttp "warden/contexts/moderation-safety/audit-trail/transport/http"
)

func writeAuditError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, audithttp.ErrorResponse{Code: code, Message: message})
}

func writeAuditDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auditerrors.ErrInvalidFilter),
		errors.Is(err, auditerrors.ErrInvalidEntry):
		writeAuditError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
	case errors.Is(err, auditerrors.ErrUnsupportedFormat):
		writeAuditError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error())
	case errors.Is(err, auditerrors.ErrForbidden):
		writeAuditError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	default:
		writeAuditError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func auditListRequest(r *http.Request) (audithttp.ListEntriesRequest, error) {
	query := r.URL.Query()
	req := audithttp.ListEntriesRequest{
		TargetID: query.Get("target_id"),
		ActorID:  query.Get("actor_id"),
		Action:   query.Get("action"),
		Status:   query.Get("status"),
		Since:    query.Get("since"),
		Until:    query.Get("until"),
		Cursor:   query.Get("cursor"),
	}
	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			return audithttp.ListEntriesRequest{}, auditerrors.ErrInvalidFilter
		}
		req.Limit = limit
	}
	return req, nil
}

func (s *Server) handleListAuditEntries(w http.ResponseWriter, r *http.Request, principal Principal) {
	if !principal.Privileged() {
		writeAuditDomainError(w, auditerrors.ErrForbidden)
		return
	}
	req, err := auditListRequest(r)
	if err != nil {
		writeAuditError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
		return
	}
	resp, err := s.audit.Handler.ListEntriesHandler(r.Context(), req)
	if err != nil {
		writeAuditDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportAuditEntries(w http.ResponseWriter, r *http.Request, principal Principal) {
	if !principal.Privileged() {
		writeAuditDomainError(w, auditerrors.ErrForbidden)
		return
	}
	req, err := auditListRequest(r)
	if err != nil {
		writeAuditError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	out := &exportWriter{w: w, format: format}
	count, err := s.audit.Handler.ExportEntriesHandler(r.Context(), req, format, out)
	if err != nil {
		if !out.started {
			writeAuditDomainError(w, err)
			return
		}
		s.logger.Error("audit export aborted mid-stream",
			"event", "http_audit_export_aborted",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"written", count,
			"error", err.Error(),
		)
		return
	}
	if !out.started {
		out.writeHeader()
	}
}

// exportWriter delays the status line until the first byte so validation
// errors can still be reported as JSON.
type exportWriter struct {
	w       http.ResponseWriter
	format  string
	started bool
}

func (e *exportWriter) writeHeader() {
	e.started = true
	if e.format == "csv" {
		e.w.Header().Set("Content-Type", "text/csv")
		e.w.Header().Set("Content-Disposition", `attachment; filename="audit-log.csv"`)
	} else {
		e.w.Header().Set("Content-Type", "application/x-ndjson")
		e.w.Header().Set("Content-Disposition", `attachment; filename="audit-log.jsonl"`)
	}
	e.w.WriteHeader(http.StatusOK)
}

func (e *exportWriter) Write(p []byte) (int, error) {
	if !e.started {
		e.writeHeader()
	}
	return e.w.Write(p)
}
