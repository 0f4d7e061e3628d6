package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	audittrail "warden/contexts/moderation-safety/audit-trail"
	moderationpipeline "warden/contexts/moderation-safety/moderation-pipeline"
	strikeledger "warden/contexts/moderation-safety/strike-ledger"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "warden/internal/platform/httpserver/docs"
)

const maxRequestBodyBytes = 1 << 20

type Server struct {
	mux      *http.ServeMux
	http     *http.Server
	logger   *slog.Logger
	addr     string
	auth     Authenticator
	pipeline moderationpipeline.Module
	ledger   strikeledger.Module
	audit    audittrail.Module
}

func New(
	pipeline moderationpipeline.Module,
	ledger strikeledger.Module,
	audit audittrail.Module,
	auth Authenticator,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		auth:     auth,
		pipeline: pipeline,
		ledger:   ledger,
		audit:    audit,
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Image classification can take several seconds per request.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("POST /api/moderation/v1/assets/{asset_id}/created", s.authenticated(s.handleAssetCreated))
	s.mux.HandleFunc("POST /api/moderation/v1/assets/{asset_id}/rescan", s.authenticated(s.handleAssetRescan))
	s.mux.HandleFunc("GET /api/moderation/v1/assets/{asset_id}", s.authenticated(s.handleGetAssetModeration))

	s.mux.HandleFunc("POST /api/trust/v1/users/{user_id}/warnings", s.authenticated(s.handleRecordWarning))
	s.mux.HandleFunc("GET /api/trust/v1/users/{user_id}/standing", s.authenticated(s.handleGetStanding))
	s.mux.HandleFunc("POST /api/trust/v1/users/{user_id}/ban", s.authenticated(s.handleBanUser))
	s.mux.HandleFunc("POST /api/trust/v1/users/{user_id}/unban", s.authenticated(s.handleUnbanUser))
	s.mux.HandleFunc("POST /api/trust/v1/sweeps/ban-expiry", s.authenticated(s.handleBanExpirySweep))

	s.mux.HandleFunc("GET /api/audit/v1/entries", s.authenticated(s.handleListAuditEntries))
	s.mux.HandleFunc("GET /api/audit/v1/entries/export", s.authenticated(s.handleExportAuditEntries))
}

// decodeJSON reads an optional JSON body. An empty body leaves target untouched.
func decodeJSON(r *http.Request, w http.ResponseWriter, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
