package models

import "strings"

// Role is the closed set of account roles. Authorization sites switch over
// every value, so adding a role forces a review of each of them.
type Role string

const (
	RoleLearner     Role = "learner"
	RoleEducator    Role = "educator"
	RoleCoordinator Role = "coordinator"
)

// Roles lists every known role.
var Roles = []Role{RoleLearner, RoleEducator, RoleCoordinator}

// ParseRole normalises input and reports whether it names a known role.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleLearner, RoleEducator, RoleCoordinator:
		return role, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Label returns the display name shown to end users.
func (r Role) Label() string {
	switch r {
	case RoleCoordinator:
		return "Coordinator"
	case RoleEducator:
		return "Instructor"
	case RoleLearner:
		return "Student"
	default:
		return string(r)
	}
}

func (r Role) String() string {
	return string(r)
}
