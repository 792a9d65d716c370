package domain

// Role is a coarse authorization level held by an identity.
type Role string

const (
	RoleUser       Role = "user"
	RoleStaff      Role = "staff"
	RoleSuperadmin Role = "superadmin"
)

// ParseRole validates and normalizes a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleStaff, RoleSuperadmin:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// RoleSet is the single downstream representation of an identity's roles.
// Upstream sources (local credential rows, directory responses, token
// claims) are normalized into a RoleSet once, at the resolver boundary.
type RoleSet []Role

// NewRoleSet builds a deduplicated role set.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if !set.Has(r) {
			set = append(set, r)
		}
	}
	return set
}

// RoleSetFromStrings normalizes a list of role strings, dropping values
// the system does not recognize.
func RoleSetFromStrings(values []string) RoleSet {
	set := make(RoleSet, 0, len(values))
	for _, v := range values {
		role, err := ParseRole(v)
		if err != nil {
			continue
		}
		if !set.Has(role) {
			set = append(set, role)
		}
	}
	return set
}

// Has reports whether the set contains the given role.
func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the set intersects the given roles.
func (rs RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

// Strings returns the set as plain strings, for token claims.
func (rs RoleSet) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

// Identity is the resolved caller: role set plus per-category staff
// assignment scope. It is constructed fresh on every authentication event
// and never persisted; only its source rows persist.
type Identity struct {
	// SubjectID is the local user ID. Nil for identities resolved through
	// the external employee directory.
	SubjectID        *int32  `json:"subjectId,omitempty"`
	Username         string  `json:"username"`
	EmployeeCode     string  `json:"employeeCode,omitempty"`
	DisplayName      string  `json:"displayName,omitempty"`
	Roles            RoleSet `json:"roles"`
	StaffAssignments []int32 `json:"staffAssignments"`
}

// Scope is the row predicate an identity's reads must satisfy. All means
// unrestricted; otherwise rows are limited to the listed category IDs, and
// an empty list means the result set is empty (not an error).
type Scope struct {
	All         bool
	CategoryIDs []int32
}

// Empty reports whether the scope admits no rows at all.
func (s Scope) Empty() bool {
	return !s.All && len(s.CategoryIDs) == 0
}

// Covers reports whether the scope admits rows for the given category.
func (s Scope) Covers(categoryID int32) bool {
	if s.All {
		return true
	}
	for _, id := range s.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// ScopeFor derives the transaction/budget visibility scope for an identity.
// Superadmins see everything, staff see their assigned categories, and
// plain users see nothing here; their balance and history reads are scoped
// by employee code at the endpoint instead.
func ScopeFor(identity *Identity) Scope {
	if identity == nil {
		return Scope{}
	}
	if identity.Roles.Has(RoleSuperadmin) {
		return Scope{All: true}
	}
	if identity.Roles.Has(RoleStaff) {
		return Scope{CategoryIDs: identity.StaffAssignments}
	}
	return Scope{}
}
