package httpapi

import (
	"errors"
	"net/http"
	"time"

	"soberhaven.org/internal/audit"
	"soberhaven.org/internal/authz"
	"soberhaven.org/internal/identity"
)

const defaultTokenTTL = 60 * time.Minute

type tokenRequest struct {
	User       string `json:"user"`
	Role       string `json:"role"`
	TenantID   string `json:"tenant_id"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// handleAuthToken signs a credential for a subject. The endpoint is the stand-in
// for the hosted identity provider's sign-in flow.
func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.issuer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "token issuance is not configured")
		return
	}
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		writeAuthzError(w, r, err)
		return
	}
	ttl := defaultTokenTTL
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}
	token, expiresAt, err := a.issuer.IssueToken(req.User, role, req.TenantID, ttl)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"subject":   req.User,
		"role":      string(role),
		"tenant_id": req.TenantID,
	})
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

type revokeRequest struct {
	Token string `json:"token"`
}

// handleAuthRevoke invalidates a still-valid credential ahead of its expiry.
func (a *API) handleAuthRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.issuer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "token issuance is not configured")
		return
	}
	var req revokeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.issuer.Revoke(r.Context(), req.Token); err != nil {
		switch {
		case errors.Is(err, identity.ErrRevocationUnavailable):
			writeError(w, r, http.StatusServiceUnavailable, "revocation is not configured")
		case errors.Is(err, identity.ErrInvalidToken):
			writeAuthzError(w, r, authz.NewAuthenticationError("invalid token"))
		default:
			writeError(w, r, http.StatusInternalServerError, "revoke failed")
		}
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.token.revoked", nil)
	writeJSON(w, http.StatusOK, map[string]any{"revoked": true})
}
