package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{
		AdminGroup:   "school-admins",
		TeacherGroup: "faculty",
		ParentGroup:  "guardians",
		StudentGroup: "pupils",
	}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
		ok     bool
	}{
		{"admin", []string{"school-admins"}, domainauth.RoleAdmin, true},
		{"teacher", []string{"everyone", "faculty"}, domainauth.RoleTeacher, true},
		{"parent", []string{"guardians"}, domainauth.RoleParent, true},
		{"student", []string{"pupils"}, domainauth.RoleStudent, true},
		{"most privileged wins", []string{"pupils", "faculty", "school-admins"}, domainauth.RoleAdmin, true},
		{"unmapped", []string{"everyone"}, "", false},
		{"no groups", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Map(tt.groups)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestStaticRoleMapper_EmptyGroupNeverMatches(t *testing.T) {
	m := StaticRoleMapper{TeacherGroup: "faculty"}
	_, ok := m.Map([]string{""})
	assert.False(t, ok)
}
