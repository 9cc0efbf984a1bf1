package handler

import (
	"net/http"
	"time"

	"bazaar/internal/cache"

	"github.com/rs/zerolog"
)

// AuthHandler handles session-related HTTP requests. Token issuance lives in
// the identity service; this side only revokes.
type AuthHandler struct {
	blacklist cache.TokenBlacklist
	logger    zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(blacklist cache.TokenBlacklist, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		blacklist: blacklist,
		logger:    logger.With().Str("handler", "auth").Logger(),
	}
}

// Logout handles POST /auth/logout. The presented token is blacklisted for
// its remaining lifetime, so it is rejected everywhere from the next request
// on. Tokens minted without a jti cannot be revoked individually.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if p.TokenID != "" {
		if err := h.blacklist.Invalidate(r.Context(), p.TokenID, time.Until(p.ExpiresAt)); err != nil {
			writeError(w, err, h.logger)
			return
		}
		h.logger.Info().Str("subject", p.ID.String()).Msg("token revoked")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
