package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bazaar/internal/cache"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Role distinguishes the two actor kinds on the API surface.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
)

// Principal is the authenticated actor extracted from a bearer token.
// Token issuance happens elsewhere; this layer only verifies and unpacks.
// TokenID and ExpiresAt identify the presented token itself so a logout
// can revoke it for exactly its remaining lifetime.
type Principal struct {
	ID        uuid.UUID
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

type principalKey struct{}

// PrincipalFrom returns the authenticated principal stored in the context.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// BearerAuth validates the Authorization bearer token, rejects blacklisted
// tokens and stores the resulting principal in the request context. The
// health endpoint and the gateway confirmation webhook stay open.
func BearerAuth(secret string, blacklist cache.TokenBlacklist, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/payments/confirm" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				unauthorised(w, "missing bearer token")
				return
			}

			raw := strings.TrimPrefix(auth, "Bearer ")
			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithLeeway(30*time.Second))
			if err != nil || !token.Valid {
				logger.Warn().Str("path", r.URL.Path).Err(err).Msg("invalid bearer token")
				unauthorised(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorised(w, "invalid token claims")
				return
			}

			jti, _ := claims["jti"].(string)
			if jti != "" {
				revoked, err := blacklist.IsInvalidated(r.Context(), jti)
				if err != nil {
					logger.Error().Err(err).Msg("blacklist lookup failed")
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				if revoked {
					logger.Warn().Str("path", r.URL.Path).Msg("revoked token rejected")
					unauthorised(w, "token revoked")
					return
				}
			}

			sub, _ := claims["sub"].(string)
			subject, err := uuid.Parse(sub)
			if err != nil {
				unauthorised(w, "invalid token subject")
				return
			}

			roleClaim, _ := claims["role"].(string)
			role := Role(roleClaim)
			if role != RoleCustomer && role != RoleMerchant {
				unauthorised(w, "invalid token role")
				return
			}

			var expiresAt time.Time
			if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
				expiresAt = exp.Time
			}

			ctx := WithPrincipal(r.Context(), Principal{
				ID:        subject,
				Role:      role,
				TokenID:   jti,
				ExpiresAt: expiresAt,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorised(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "UNAUTHORIZED", "message": "` + message + `"}`))
}
