package authz

import "fmt"

// Role is a privilege level drawn from the platform's fixed hierarchy.
type Role string

const (
	RoleResident    Role = "resident"
	RoleStaff       Role = "staff"
	RoleStaffAdmin  Role = "staff_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleSuperAdmin  Role = "super_admin"
)

// roleHierarchy fixes the total order of roles. Position encodes privilege:
// a role inherits every capability of the roles before it. Inserting or
// reordering an entry changes the meaning of every threshold below and is a
// reviewed decision, never a runtime one.
var roleHierarchy = []Role{
	RoleResident,
	RoleStaff,
	RoleStaffAdmin,
	RoleTenantAdmin,
	RoleSuperAdmin,
}

// Level returns the zero-based rank of the role within the hierarchy.
// It panics on a value outside the enumerated set: such a value can only be
// produced by a defect upstream, and must not be silently mapped to either a
// permissive or a restrictive rank.
func (r Role) Level() int {
	for i, known := range roleHierarchy {
		if r == known {
			return i
		}
	}
	panic(fmt.Sprintf("authz: unknown role %q", string(r)))
}

// AtLeast reports whether the role meets the given minimum threshold.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

// ParseRole validates a raw string from an untrusted source against the
// enumerated set. Unlike Level, an unknown value here is a caller error,
// not a defect.
func ParseRole(raw string) (Role, error) {
	for _, known := range roleHierarchy {
		if raw == string(known) {
			return known, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown role %q", raw))
}

// Roles returns the hierarchy from lowest to highest privilege.
func Roles() []Role {
	out := make([]Role, len(roleHierarchy))
	copy(out, roleHierarchy)
	return out
}

// CanWrite reports whether the role may create or edit tenant resources.
// staff_admin and above.
func CanWrite(r Role) bool { return r.AtLeast(RoleStaffAdmin) }

// CanManageStaff reports whether the role may manage staff and houses.
// tenant_admin and above.
func CanManageStaff(r Role) bool { return r.AtLeast(RoleTenantAdmin) }

// CanReadAll reports whether the role may read and report across the tenant.
// staff and above.
func CanReadAll(r Role) bool { return r.AtLeast(RoleStaff) }
