package authroles

import (
	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/ports"
)

var _ ports.RoleMapper = StaticRoleMapper{}

// StaticRoleMapper maps provider groups to roles by exact membership.
// When a user is in several mapped groups the most privileged role wins.
// An empty group name never matches.
type StaticRoleMapper struct {
	AdminGroup   string
	TeacherGroup string
	ParentGroup  string
	StudentGroup string
}

// Map returns the role for groups, or ok=false when none of them is mapped.
func (m StaticRoleMapper) Map(groups []string) (domainauth.Role, bool) {
	rules := []struct {
		group string
		role  domainauth.Role
	}{
		{m.AdminGroup, domainauth.RoleAdmin},
		{m.TeacherGroup, domainauth.RoleTeacher},
		{m.ParentGroup, domainauth.RoleParent},
		{m.StudentGroup, domainauth.RoleStudent},
	}
	for _, r := range rules {
		if r.group == "" {
			continue
		}
		for _, g := range groups {
			if g == r.group {
				return r.role, true
			}
		}
	}
	return "", false
}
