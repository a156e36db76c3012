package model

import "strings"

// Role is the permission level carried by a user.
type Role string

const (
	RoleGuest Role = "GUEST"
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Permission authority strings as stored in tokens and checked by middleware.
const (
	PermAdminCreate = "admin:create"
	PermAdminRead   = "admin:read"
	PermAdminUpdate = "admin:update"
	PermAdminDelete = "admin:delete"
	PermUserCreate  = "user:create"
	PermUserRead    = "user:read"
	PermGuestRead   = "guest:read"
)

// rolePermissions is a static table; authority resolution is a plain lookup,
// never a switch on the role value.
var rolePermissions = map[Role][]string{
	RoleGuest: {PermGuestRead},
	RoleUser:  {PermUserCreate, PermUserRead},
	RoleAdmin: {PermAdminCreate, PermAdminRead, PermAdminUpdate, PermAdminDelete},
}

// ParseRole normalizes raw input to a known role. Unknown input maps to GUEST.
func ParseRole(raw string) Role {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := rolePermissions[role]; !ok {
		return RoleGuest
	}
	return role
}

// GrantedAuthorities expands a role into its permission strings plus the
// ROLE_<NAME> marker authority.
func GrantedAuthorities(role Role) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		role = RoleGuest
		perms = rolePermissions[RoleGuest]
	}

	authorities := make([]string, 0, len(perms)+1)
	authorities = append(authorities, perms...)
	authorities = append(authorities, "ROLE_"+string(role))
	return authorities
}

// HasAuthority reports whether the authority set contains the given permission.
func HasAuthority(authorities []string, permission string) bool {
	for _, a := range authorities {
		if a == permission {
			return true
		}
	}
	return false
}
