package httpserver

import (
	"errors"
	"net/http"

	strikeerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	ledgerports "warden/contexts/moderation-safety/strike-ledger/ports"
	ledgerhttp "warden/contexts/moderation-safety/strike-ledger/transport/http"
)

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{Code: code, Message: message})
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, strikeerrors.ErrInvalidRequest),
		errors.Is(err, strikeerrors.ErrInvalidCategory):
		writeLedgerError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, strikeerrors.ErrForbidden):
		writeLedgerError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	case errors.Is(err, strikeerrors.ErrAccountSuspended):
		writeLedgerError(w, http.StatusForbidden, "ACCOUNT_SUSPENDED", err.Error())
	case errors.Is(err, strikeerrors.ErrUserNotFound):
		writeLedgerError(w, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
	case errors.Is(err, strikeerrors.ErrNotBanned):
		writeLedgerError(w, http.StatusConflict, "NOT_BANNED", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func ledgerActor(principal Principal) ledgerports.Actor {
	return ledgerports.Actor{UserID: principal.UserID, Role: principal.Role}
}

func (s *Server) handleRecordWarning(w http.ResponseWriter, r *http.Request, principal Principal) {
	var req ledgerhttp.RecordWarningRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.RecordWarningHandler(r.Context(), ledgerActor(principal), r.PathValue("user_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetStanding(w http.ResponseWriter, r *http.Request, principal Principal) {
	resp, err := s.ledger.Handler.GetStandingHandler(r.Context(), ledgerActor(principal), r.PathValue("user_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBanUser(w http.ResponseWriter, r *http.Request, principal Principal) {
	var req ledgerhttp.BanRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.BanUserHandler(r.Context(), ledgerActor(principal), r.PathValue("user_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnbanUser(w http.ResponseWriter, r *http.Request, principal Principal) {
	var req ledgerhttp.UnbanRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.UnbanUserHandler(r.Context(), ledgerActor(principal), r.PathValue("user_id"), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBanExpirySweep(w http.ResponseWriter, r *http.Request, principal Principal) {
	resp, err := s.ledger.Handler.RunBanExpirySweepHandler(r.Context(), ledgerActor(principal))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
