package route

import domainauth "github.com/revanth-rampal/trail/internal/domain/auth"

// MenuItem is one sidebar link.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var dashboardItem = MenuItem{Label: "Dashboard", Path: "/dashboard"}

var menuByRole = map[domainauth.Role][]MenuItem{
	domainauth.RoleAdmin: {
		{Label: "Students", Path: "/students-profile"},
		{Label: "Teachers", Path: "/users/teachers"},
		{Label: "Attendance Management", Path: "/attendance"},
		{Label: "Calendar Management", Path: "/calendar"},
		{Label: "Notice Board", Path: "/notices"},
		{Label: "Emergency Contacts", Path: "/emergency_contact"},
		{Label: "Test & Exam Management", Path: "/test_marks"},
		{Label: "Feedback Management", Path: "/feedback"},
		{Label: "Hall of Fame", Path: "/hall-of-fame"},
		{Label: "Resource Hub", Path: "/resources"},
		{Label: "Settings", Path: "/settings"},
		{Label: "Help & Support", Path: "/help"},
	},
	domainauth.RoleTeacher: {
		{Label: "Mark Attendance", Path: "/attendance"},
		{Label: "My Classes", Path: "/classes"},
		{Label: "Notice Board", Path: "/notices"},
		{Label: "Calendar Management", Path: "/calendar"},
		{Label: "Test & Exam Management", Path: "/test_marks"},
		{Label: "Post Marks", Path: "/post_marks"},
		{Label: "Submit Feedback", Path: "/feedback/submit"},
		{Label: "Hall of Fame", Path: "/hall-of-fame"},
		{Label: "Resource Hub", Path: "/resources"},
		{Label: "Settings", Path: "/settings"},
		{Label: "Help & Support", Path: "/help"},
	},
	domainauth.RoleParent: {
		{Label: "Attendance", Path: "/view_attendance/1"},
		{Label: "Class TimeTable", Path: "/view_timetable/1"},
		{Label: "Apply for Leave", Path: "/leave"},
		{Label: "Bus Tracking", Path: "/bus-tracking"},
		{Label: "Settings", Path: "/settings"},
	},
	domainauth.RoleStudent: {
		{Label: "My Attendance", Path: "/attendance"},
		{Label: "Resources", Path: "/resources"},
		{Label: "Bus Tracking", Path: "/bus-tracking"},
	},
}

// Menu returns the sidebar for role. Items pointing at undeclared paths, or at paths the role
// would be bounced from, are dropped so the menu never offers a link that redirects to login.
func Menu(p *Policy, role domainauth.Role) []MenuItem {
	if !role.Valid() {
		return nil
	}
	snap := domainauth.Snapshot{
		Status:   domainauth.StatusAuthenticated,
		Identity: &domainauth.Identity{Role: role},
	}

	candidates := append([]MenuItem{dashboardItem}, menuByRole[role]...)
	out := make([]MenuItem, 0, len(candidates))
	for _, item := range candidates {
		m, ok := p.tree.Match(item.Path)
		if !ok || m.Route.Path == CatchAll {
			continue
		}
		if p.Decide(snap, item.Path).Kind == RedirectToLogin {
			continue
		}
		out = append(out, item)
	}
	return out
}
