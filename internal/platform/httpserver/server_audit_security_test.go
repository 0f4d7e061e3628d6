package httpserver

import (
	"context"
	"net/http"
	"strings"
	"testing"

	auditapp "warden/contexts/moderation-safety/audit-trail/application"
)

func TestAuditListRequiresPrivilegedRole(t *testing.T) {
	server := newTestServer()
	rr := server.do(t, http.MethodGet, "/api/audit/v1/entries", signTestToken(t, "user-1", "user"), "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuditListFiltersByTarget(t *testing.T) {
	server := newTestServer()
	ctx := context.Background()
	_, _ = server.audit.Service.Append(ctx, auditapp.AppendCommand{Action: "ASSET_PUBLISHED", TargetID: "asset-1"})
	_, _ = server.audit.Service.Append(ctx, auditapp.AppendCommand{Action: "ASSET_PUBLISHED", TargetID: "asset-2"})

	rr := server.do(t, http.MethodGet, "/api/audit/v1/entries?target_id=asset-2", signTestToken(t, "admin-1", RoleAdmin), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "asset-2") || strings.Contains(rr.Body.String(), `"asset-1"`) {
		t.Fatalf("unexpected entries %s", rr.Body.String())
	}
}

func TestAuditListRejectsBadLimit(t *testing.T) {
	server := newTestServer()
	rr := server.do(t, http.MethodGet, "/api/audit/v1/entries?limit=ten", signTestToken(t, "admin-1", RoleAdmin), "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuditExportStreamsCSV(t *testing.T) {
	server := newTestServer()
	_, _ = server.audit.Service.Append(context.Background(), auditapp.AppendCommand{Action: "WARNING_ISSUED", TargetID: "user-1"})

	rr := server.do(t, http.MethodGet, "/api/audit/v1/entries/export?format=csv", signTestToken(t, "founder-1", RoleFounder), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rr.Body.String(), "entry_id,") || !strings.Contains(rr.Body.String(), "WARNING_ISSUED") {
		t.Fatalf("unexpected export body %s", rr.Body.String())
	}
}

func TestAuditExportRejectsUnknownFormat(t *testing.T) {
	server := newTestServer()
	rr := server.do(t, http.MethodGet, "/api/audit/v1/entries/export?format=xml", signTestToken(t, "admin-1", RoleAdmin), "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}
