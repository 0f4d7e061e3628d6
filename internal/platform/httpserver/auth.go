package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	strikeerrors "warden/contexts/moderation-safety/strike-ledger/domain/errors"
	ledgerhttp "warden/contexts/moderation-safety/strike-ledger/transport/http"
)

const (
	RoleAdmin   = "admin"
	RoleFounder = "founder"
	// RoleService is carried by tokens minted for the asset store webhook.
	RoleService = "service"
)

var ErrInvalidToken = errors.New("invalid bearer token")

// Claims is the bearer token payload. The subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) Privileged() bool {
	return p.Role == RoleAdmin || p.Role == RoleFounder
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	Secret []byte
	Issuer string
}

func NewAuthenticator(secret string) Authenticator {
	return Authenticator{Secret: []byte(secret)}
}

func (a Authenticator) Verify(raw string) (Principal, error) {
	if len(a.Secret) == 0 {
		return Principal{}, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.Issuer != "" {
		options = append(options, jwt.WithIssuer(a.Issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.Secret, nil
	}, options...)
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Principal{UserID: subject, Role: strings.ToLower(strings.TrimSpace(claims.Role))}, nil
}

// Sign mints a token for principal. Used by tooling and tests.
func (a Authenticator) Sign(principal Principal, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    a.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// authenticated resolves the bearer principal and refuses suspended accounts.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, Principal)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization bearer token is required")
			return
		}
		principal, err := s.auth.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			s.logger.Debug("bearer token rejected",
				"event", "http_auth_rejected",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"path", r.URL.Path,
				"error", err.Error(),
			)
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "bearer token is invalid or expired")
			return
		}
		if principal.Role != RoleService {
			if err := s.ledger.Handler.CheckAccess(r.Context(), principal.UserID); err != nil {
				if errors.Is(err, strikeerrors.ErrAccountSuspended) {
					writeAuthError(w, http.StatusForbidden, "ACCOUNT_SUSPENDED", err.Error())
					return
				}
				s.logger.Error("account access check failed",
					"event", "http_access_check_failed",
					"module", "internal/platform/httpserver",
					"layer", "platform",
					"user_id", principal.UserID,
					"error", err.Error(),
				)
				writeAuthError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				return
			}
		}
		next(w, r, principal)
	}
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{Code: code, Message: message})
}
