package httpserver

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	audittrail "warden/contexts/moderation-safety/audit-trail"
	moderationpipeline "warden/contexts/moderation-safety/moderation-pipeline"
	"warden/contexts/moderation-safety/moderation-pipeline/domain/entities"
	strikeledger "warden/contexts/moderation-safety/strike-ledger"
	ledgerentities "warden/contexts/moderation-safety/strike-ledger/domain/entities"
)

const testSecret = "test-signing-secret"

type passingImage struct{}

func (passingImage) Check(_ context.Context, _ string) (entities.Verdict, error) {
	return entities.NewVerdict(entities.VerdictSourceImage, "image", false, 0.1, "safe", ""), nil
}

type testServer struct {
	*Server
	pipeline moderationpipeline.Module
	ledger   strikeledger.Module
	audit    audittrail.Module
}

func newTestServer() testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := audittrail.NewInMemoryModule(logger)
	ledger := strikeledger.NewInMemoryModule(nil, logger)
	pipeline := moderationpipeline.NewInMemoryModule(moderationpipeline.Dependencies{
		Image:  passingImage{},
		Logger: logger,
	})
	server := New(pipeline, ledger, audit, NewAuthenticator(testSecret), logger, ":0")
	return testServer{Server: server, pipeline: pipeline, ledger: ledger, audit: audit}
}

func (s testServer) do(t *testing.T, method string, path string, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func signTestToken(t *testing.T, userID string, role string) string {
	t.Helper()
	token, err := NewAuthenticator(testSecret).Sign(Principal{UserID: userID, Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return token
}

func (s testServer) seedAsset(authorID string) {
	s.pipeline.Store.PutAsset(entities.Asset{
		AssetID:   "asset-1",
		AuthorID:  authorID,
		Name:      "Camera Rig",
		ImageURL:  "https://cdn.example.com/asset-1.png",
		Status:    entities.AssetStatusUploading,
		CreatedAt: time.Now().UTC(),
	})
}

func (s testServer) seedUser(userID string, ban ledgerentities.BanRecord) {
	s.ledger.Store.PutAccount(ledgerentities.UserAccount{UserID: userID, Role: "user", Ban: ban})
}
