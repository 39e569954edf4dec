package models

// Role is a named capability tag. A user holds roles globally and may hold
// at most one role per project through a project role binding.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleEditor  Role = "editor"
	RoleMember  Role = "member"
	RoleReader  Role = "reader"
	RoleGuest   Role = "guest"
	RoleCourier Role = "courier"
)

// AllRoles lists every known role, in descending order of privilege.
var AllRoles = []Role{
	RoleAdmin,
	RoleEditor,
	RoleMember,
	RoleReader,
	RoleGuest,
	RoleCourier,
}

// ParseRole converts a string to a Role. The second return value reports
// whether the string named a known role.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}
