package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"soberhaven.org/internal/audit"
	"soberhaven.org/internal/authz"
	"soberhaven.org/internal/obs"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// guardTenant runs the tenant access check for the target tenant and, on
// success, stashes the verified claims in the request context. A missing or
// malformed Authorization header is an authentication failure (identity was
// never presented); everything past that point is the validator's call.
func (a *API) guardTenant(w http.ResponseWriter, r *http.Request, tenantID string) (authz.Claims, *http.Request, bool) {
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		a.denyAuthz(w, r, authz.NewAuthenticationError(err.Error()))
		return authz.Claims{}, r, false
	}
	claims, err := a.validator.ValidateTenantAccess(r.Context(), token, tenantID)
	if err != nil {
		a.denyAuthz(w, r, err)
		return authz.Claims{}, r, false
	}
	obs.RecordAuthzDecision("allow")
	ctx := authz.ContextWithClaims(r.Context(), claims)
	return claims, r.WithContext(ctx), true
}

// requireRole enforces a capability threshold after the tenant guard passed.
func (a *API) requireRole(w http.ResponseWriter, r *http.Request, claims authz.Claims, check func(authz.Role) bool) bool {
	if check(claims.Role) {
		return true
	}
	a.denyAuthz(w, r, authz.NewTenantError("insufficient role for this operation"))
	return false
}

func (a *API) denyAuthz(w http.ResponseWriter, r *http.Request, err error) {
	obs.RecordAuthzDecision("deny")
	_ = audit.LogEvent(r.Context(), "authz.denied", map[string]any{
		"path": r.URL.Path,
		"code": authz.CodeOf(err),
	})
	writeAuthzError(w, r, err)
}

// writeAuthzError is the single translation point from the typed failure
// taxonomy to HTTP: a switch over data, not a walk over error types.
func writeAuthzError(w http.ResponseWriter, r *http.Request, err error) {
	payload := map[string]any{
		"error": err.Error(),
		"code":  authz.CodeOf(err),
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, authz.StatusOf(err), payload)
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
