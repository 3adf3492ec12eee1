package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "backupauth/pkg/domain"
	"backupauth/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	AccountID string
	DeviceID  uint32
	JTI       string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// BearerToken extracts the token from an "Authorization: Bearer ..." value.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Authenticate validates a bearer token and returns a context carrying the account ID.
// It is shared by the HTTP middleware and the gRPC interceptor.
func Authenticate(ctx context.Context, validator JWTValidator, token string) (context.Context, error) {
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return ctx, err
	}
	accountID, err := id.ParseAccountID(claims.AccountID)
	if err != nil {
		return ctx, fmt.Errorf("invalid account claim: %w", err)
	}
	return requestcontext.WithAccountID(ctx, accountID), nil
}

// RequireAuth returns middleware that validates JWT tokens and stores the account ID in context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			authed, err := Authenticate(ctx, validator, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(authed))
		})
	}
}
