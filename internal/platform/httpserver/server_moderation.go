package httpserver

import (
	"context"
	"errors"
	"net/http"

	pipelineerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
	pipelineports "warden/contexts/moderation-safety/moderation-pipeline/ports"
	pipelinehttp "warden/contexts/moderation-safety/moderation-pipeline/transport/http"
)

func writePipelineError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pipelinehttp.ErrorResponse{Code: code, Message: message})
}

func writePipelineDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipelineerrors.ErrInvalidInput):
		writePipelineError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, pipelineerrors.ErrForbidden):
		writePipelineError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	case errors.Is(err, pipelineerrors.ErrAssetNotFound):
		writePipelineError(w, http.StatusNotFound, "ASSET_NOT_FOUND", err.Error())
	case errors.Is(err, pipelineerrors.ErrAlreadyDecided),
		errors.Is(err, pipelineerrors.ErrInvalidTransition):
		writePipelineError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, pipelineerrors.ErrMalformedResponse):
		writePipelineError(w, http.StatusBadGateway, "MALFORMED_CLASSIFIER_RESPONSE", err.Error())
	case errors.Is(err, pipelineerrors.ErrClassifierUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		writePipelineError(w, http.StatusBadGateway, "CLASSIFIER_UNAVAILABLE", err.Error())
	default:
		writePipelineError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func (s *Server) handleAssetCreated(w http.ResponseWriter, r *http.Request, principal Principal) {
	if principal.Role != RoleService && !principal.Privileged() {
		writePipelineError(w, http.StatusForbidden, "PERMISSION_DENIED", "asset intake is restricted to the asset store")
		return
	}
	var req pipelinehttp.AssetCreatedRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writePipelineError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	resp, err := s.pipeline.Handler.AssetCreatedHandler(r.Context(), r.PathValue("asset_id"), req)
	if err != nil {
		writePipelineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetRescan(w http.ResponseWriter, r *http.Request, principal Principal) {
	resp, err := s.pipeline.Handler.RescanAssetHandler(
		r.Context(),
		pipelineports.Principal{UserID: principal.UserID, Role: principal.Role},
		r.PathValue("asset_id"),
	)
	if err != nil {
		writePipelineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAssetModeration(w http.ResponseWriter, r *http.Request, principal Principal) {
	resp, err := s.pipeline.Handler.GetAssetModerationHandler(
		r.Context(),
		pipelineports.Principal{UserID: principal.UserID, Role: principal.Role},
		r.PathValue("asset_id"),
	)
	if err != nil {
		writePipelineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
