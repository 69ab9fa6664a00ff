package access

// Role is a coarse privilege tier. Roles are totally ordered by RoleLevel.
type Role string

const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Permission is a fine grained capability
type Permission string

const (
	PermManagePosts      Permission = "manage_posts"
	PermManageUsers      Permission = "manage_users"
	PermManageReports    Permission = "manage_reports"
	PermManageEvents     Permission = "manage_events"
	PermManageBusinesses Permission = "manage_businesses"
	PermViewAnalytics    Permission = "view_analytics"
	PermManageModerators Permission = "manage_moderators"
)

// AllRoles lists every role from least to most privileged
var AllRoles = []Role{RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin}

var adminPermissions = []Permission{
	PermManagePosts,
	PermManageUsers,
	PermManageReports,
	PermManageEvents,
	PermManageBusinesses,
	PermViewAnalytics,
}

// RolePermissions is the fixed set each role implies
var RolePermissions = map[Role][]Permission{
	RoleUser:       {},
	RoleModerator:  {PermManagePosts, PermManageReports},
	RoleAdmin:      adminPermissions,
	RoleSuperAdmin: append(append([]Permission{}, adminPermissions...), PermManageModerators),
}

// roleHierarchy defines role levels (higher = more privileged)
var roleHierarchy = map[Role]int{
	RoleUser:       0,
	RoleModerator:  1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Subject is anything that carries a role and extra grants, usually a user
type Subject interface {
	AccessRole() Role
	ExtraPermissions() []Permission
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// RoleLevel returns the privilege level of r. Unknown roles rank with user.
func RoleLevel(r Role) int {
	return roleHierarchy[r]
}

// IsAdminRole is true for moderator and above
func IsAdminRole(r Role) bool {
	return r == RoleModerator || r == RoleAdmin || r == RoleSuperAdmin
}

// IsAdmin is true when s holds moderator or a higher role
func IsAdmin(s Subject) bool {
	if s == nil {
		return false
	}
	return IsAdminRole(s.AccessRole())
}

// HasPermission is false for non admins. Admins hold their role's fixed set
// plus any extra grants on the record.
func HasPermission(s Subject, p Permission) bool {
	if !IsAdmin(s) {
		return false
	}
	for _, rp := range RolePermissions[s.AccessRole()] {
		if rp == p {
			return true
		}
	}
	for _, xp := range s.ExtraPermissions() {
		if xp == p {
			return true
		}
	}
	return false
}

// CanManageRole reports whether an actor holding actor may act on an account
// holding target
func CanManageRole(actor, target Role) bool {
	switch actor {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return target == RoleUser || target == RoleModerator
	case RoleModerator:
		return target == RoleUser
	default:
		return false
	}
}

// CanManageUser applies CanManageRole to two subjects
func CanManageUser(actor, target Subject) bool {
	if actor == nil || target == nil {
		return false
	}
	return CanManageRole(actor.AccessRole(), target.AccessRole())
}

// AssignableRoles returns the roles actor may grant to others
func AssignableRoles(actor Role) []Role {
	switch actor {
	case RoleSuperAdmin:
		return []Role{RoleUser, RoleModerator, RoleAdmin}
	case RoleAdmin:
		return []Role{RoleUser, RoleModerator}
	case RoleModerator:
		return []Role{RoleUser}
	default:
		return []Role{}
	}
}

// CanAssignRole reports whether actor may grant role
func CanAssignRole(actor, role Role) bool {
	for _, r := range AssignableRoles(actor) {
		if r == role {
			return true
		}
	}
	return false
}

// ValidPermission reports whether p is a known permission
func ValidPermission(p Permission) bool {
	for _, known := range RolePermissions[RoleSuperAdmin] {
		if known == p {
			return true
		}
	}
	return false
}
