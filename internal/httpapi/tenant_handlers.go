package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"soberhaven.org/internal/audit"
	"soberhaven.org/internal/authz"
	"soberhaven.org/internal/profile"
	"soberhaven.org/internal/tenant"
)

type createTenantRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	OwnerUID string `json:"owner_uid"`
}

// The tenant and profile services are only wired when a database is
// configured. Routes answer 503 rather than panic on a half-configured
// process.
func (a *API) tenantService(w http.ResponseWriter, r *http.Request) (*tenant.Service, bool) {
	if a.tenants == nil {
		writeError(w, r, http.StatusServiceUnavailable, "tenant service unavailable")
		return nil, false
	}
	return a.tenants, true
}

func (a *API) profileService(w http.ResponseWriter, r *http.Request) (*profile.Service, bool) {
	if a.profiles == nil {
		writeError(w, r, http.StatusServiceUnavailable, "profile service unavailable")
		return nil, false
	}
	return a.profiles, true
}

// handleTenants covers the collection endpoint. Provisioning an operator
// account is a platform-scoped action: the guard runs with no target tenant,
// so only the platform bypass admits.
func (a *API) handleTenants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	_, r, ok := a.guardTenant(w, r, "")
	if !ok {
		return
	}
	svc, ok := a.tenantService(w, r)
	if !ok {
		return
	}
	var req createTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := svc.CreateWithAdmin(r.Context(), req.Name, req.Slug, req.OwnerUID)
	if err != nil {
		a.handleTenantError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "tenant.created", map[string]any{
		"tenant_id": t.ID,
		"slug":      t.Slug,
		"owner_uid": t.OwnerUID,
	})
	w.Header().Set("Location", "/v1/tenants/"+t.ID)
	writeJSON(w, http.StatusCreated, t)
}

// handleTenantScoped routes everything under /v1/tenants/{id}/...
// Every branch passes through the tenant guard with {id} as the target
// before touching any data.
func (a *API) handleTenantScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/tenants/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	tenantID := parts[0]

	claims, r, ok := a.guardTenant(w, r, tenantID)
	if !ok {
		return
	}

	switch {
	case len(parts) == 1:
		a.handleTenantByID(w, r, tenantID)
	case len(parts) == 2 && parts[1] == "settings":
		a.handleTenantSettings(w, r, claims, tenantID)
	case len(parts) == 2 && parts[1] == "suspend":
		a.handleTenantStatus(w, r, claims, tenantID, "suspend")
	case len(parts) == 2 && parts[1] == "activate":
		a.handleTenantStatus(w, r, claims, tenantID, "activate")
	case len(parts) == 2 && parts[1] == "profiles":
		a.handleTenantProfiles(w, r, claims, tenantID)
	case len(parts) == 3 && parts[1] == "profiles":
		a.handleTenantProfileByUID(w, r, claims, tenantID, parts[2])
	case len(parts) == 4 && parts[1] == "profiles" && parts[3] == "role":
		a.handleTenantProfileRole(w, r, claims, tenantID, parts[2])
	default:
		http.NotFound(w, r)
	}
}

func (a *API) handleTenantByID(w http.ResponseWriter, r *http.Request, tenantID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	svc, ok := a.tenantService(w, r)
	if !ok {
		return
	}
	t, err := svc.Get(r.Context(), tenantID)
	if err != nil {
		a.handleTenantError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type settingsRequest struct {
	AllowMultipleHouses   *bool   `json:"allow_multiple_houses"`
	RequireIncidentReview *bool   `json:"require_incident_review"`
	MaxResidents          *int    `json:"max_residents"`
	Timezone              *string `json:"timezone"`
}

func (a *API) handleTenantSettings(w http.ResponseWriter, r *http.Request, claims authz.Claims, tenantID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	if !a.requireRole(w, r, claims, authz.CanManageStaff) {
		return
	}
	svc, ok := a.tenantService(w, r)
	if !ok {
		return
	}
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	t, err := svc.UpdateSettings(r.Context(), tenantID, tenant.SettingsUpdate{
		AllowMultipleHouses:   req.AllowMultipleHouses,
		RequireIncidentReview: req.RequireIncidentReview,
		MaxResidents:          req.MaxResidents,
		Timezone:              req.Timezone,
	})
	if err != nil {
		a.handleTenantError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "tenant.settings.updated", map[string]any{
		"tenant_id": tenantID,
	})
	writeJSON(w, http.StatusOK, t)
}

// Suspend and activate are platform-scoped even though they name a tenant:
// tenant_admins cannot pause their own account.
func (a *API) handleTenantStatus(w http.ResponseWriter, r *http.Request, claims authz.Claims, tenantID, action string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if claims.Role != authz.RoleSuperAdmin {
		a.denyAuthz(w, r, authz.NewTenantError("insufficient role for this operation"))
		return
	}
	svc, ok := a.tenantService(w, r)
	if !ok {
		return
	}
	var err error
	if action == "suspend" {
		err = svc.Suspend(r.Context(), tenantID)
	} else {
		err = svc.Activate(r.Context(), tenantID)
	}
	if err != nil {
		a.handleTenantError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "tenant."+action, map[string]any{
		"tenant_id": tenantID,
	})
	writeJSON(w, http.StatusOK, map[string]any{"tenant_id": tenantID, "action": action})
}

type createProfileRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (a *API) handleTenantProfiles(w http.ResponseWriter, r *http.Request, claims authz.Claims, tenantID string) {
	svc, ok := a.profileService(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.requireRole(w, r, claims, authz.CanReadAll) {
			return
		}
		list, err := svc.ListByTenant(r.Context(), tenantID)
		if err != nil {
			a.handleProfileError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profiles": list})
	case http.MethodPost:
		if !a.requireRole(w, r, claims, authz.CanWrite) {
			return
		}
		var req createProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role, err := authz.ParseRole(req.Role)
		if err != nil {
			writeAuthzError(w, r, err)
			return
		}
		if role == authz.RoleSuperAdmin {
			writeAuthzError(w, r, authz.NewValidationError("super_admin cannot be granted through a tenant"))
			return
		}
		p, err := svc.CreateMember(r.Context(), req.UID, req.Email, req.DisplayName, tenantID, role)
		if err != nil {
			a.handleProfileError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "profile.created", map[string]any{
			"tenant_id": tenantID,
			"uid":       p.UID,
			"role":      string(role),
		})
		w.Header().Set("Location", "/v1/tenants/"+tenantID+"/profiles/"+p.UID)
		writeJSON(w, http.StatusCreated, p)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTenantProfileByUID(w http.ResponseWriter, r *http.Request, claims authz.Claims, tenantID, uid string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	svc, ok := a.profileService(w, r)
	if !ok {
		return
	}
	// Subjects may always read their own record; anything else needs the
	// read-all capability.
	if claims.SubjectID != uid && !a.requireRole(w, r, claims, authz.CanReadAll) {
		return
	}
	p, err := svc.Get(r.Context(), uid)
	if err != nil {
		a.handleProfileError(w, r, err)
		return
	}
	if p.TenantID != tenantID {
		a.handleProfileError(w, r, profile.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (a *API) handleTenantProfileRole(w http.ResponseWriter, r *http.Request, claims authz.Claims, tenantID, uid string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	svc, ok := a.profileService(w, r)
	if !ok {
		return
	}
	if !a.requireRole(w, r, claims, authz.CanManageStaff) {
		return
	}
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		writeAuthzError(w, r, err)
		return
	}
	if role == authz.RoleSuperAdmin {
		writeAuthzError(w, r, authz.NewValidationError("super_admin cannot be granted through a tenant"))
		return
	}
	// The target must already belong to this tenant. A profile bound
	// elsewhere is invisible here, same as the read route; rebinding it
	// would pull a record across the tenant partition.
	current, err := svc.Get(r.Context(), uid)
	if err != nil {
		a.handleProfileError(w, r, err)
		return
	}
	if current.TenantID != tenantID {
		a.handleProfileError(w, r, profile.ErrNotFound)
		return
	}
	p, err := svc.BindTenant(r.Context(), uid, tenantID, role)
	if err != nil {
		a.handleProfileError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "profile.role.updated", map[string]any{
		"tenant_id": tenantID,
		"uid":       uid,
		"role":      string(role),
	})
	writeJSON(w, http.StatusOK, p)
}

// --- sentinel translation ---

func (a *API) handleTenantError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrSlugTaken):
		writeError(w, r, http.StatusConflict, "slug already exists")
	case errors.Is(err, tenant.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "tenant not found")
	case errors.Is(err, profile.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "profile not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) handleProfileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrConflict):
		writeError(w, r, http.StatusConflict, "profile already exists")
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "profile not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
