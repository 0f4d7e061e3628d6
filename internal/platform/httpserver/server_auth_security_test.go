package httpserver

import (
	"net/http"
	"strings"
	"testing"
	"time"

	ledgerentities "warden/contexts/moderation-safety/strike-ledger/domain/entities"
)

func TestRequestsRequireBearerToken(t *testing.T) {
	server := newTestServer()
	rr := server.do(t, http.MethodGet, "/api/trust/v1/users/user-1/standing", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestForgedTokenIsRejected(t *testing.T) {
	server := newTestServer()
	forged, err := Authenticator{Secret: []byte("other-secret")}.Sign(Principal{UserID: "admin-1", Role: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	rr := server.do(t, http.MethodPost, "/api/trust/v1/sweeps/ban-expiry", forged, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	server := newTestServer()
	expired, err := NewAuthenticator(testSecret).Sign(Principal{UserID: "user-1", Role: "user"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	rr := server.do(t, http.MethodGet, "/api/trust/v1/users/user-1/standing", expired, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSuspendedAccountIsRefused(t *testing.T) {
	server := newTestServer()
	until := time.Now().Add(48 * time.Hour)
	server.seedUser("user-1", ledgerentities.BanRecord{IsBanned: true, Reason: "Automatic 7-day ban", BanUntil: &until})

	rr := server.do(t, http.MethodGet, "/api/trust/v1/users/user-1/standing", signTestToken(t, "user-1", "user"), "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "ACCOUNT_SUSPENDED") {
		t.Fatalf("expected suspension code, got %s", rr.Body.String())
	}
}

func TestStaleBanStillRefusedUntilSweep(t *testing.T) {
	server := newTestServer()
	past := time.Now().Add(-time.Hour)
	server.seedUser("user-1", ledgerentities.BanRecord{IsBanned: true, Reason: "timed", BanUntil: &past})
	token := signTestToken(t, "user-1", "user")

	if rr := server.do(t, http.MethodGet, "/api/trust/v1/users/user-1/standing", token, ""); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before sweep, got %d", rr.Code)
	}
	sweep := server.do(t, http.MethodPost, "/api/trust/v1/sweeps/ban-expiry", signTestToken(t, "founder-1", RoleFounder), "")
	if sweep.Code != http.StatusOK || !strings.Contains(sweep.Body.String(), `"restored_count":1`) {
		t.Fatalf("unexpected sweep response %d %s", sweep.Code, sweep.Body.String())
	}
	if rr := server.do(t, http.MethodGet, "/api/trust/v1/users/user-1/standing", token, ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 after sweep, got %d body=%s", rr.Code, rr.Body.String())
	}
}
