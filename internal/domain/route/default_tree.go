package route

import domainauth "github.com/revanth-rampal/trail/internal/domain/auth"

// DefaultTree declares the dashboard routes.
func DefaultTree() Route {
	return Route{
		Group: Public(),
		Children: []Route{
			{
				Group:     Public(),
				GuestOnly: true,
				Children: []Route{
					{Path: "/splash", Group: Public(), Page: "splash", Title: "Welcome"},
					{Path: "/login", Group: Public(), Page: "login", Title: "Sign in"},
				},
			},
			{Path: "/badges", Group: Public(), Page: "badges", Title: "Badges"},
			{
				Group: AnyAuthenticated(),
				Children: []Route{
					{Path: "/", Group: AnyAuthenticated(), Base: true},
					{Path: "/dashboard", Group: AnyAuthenticated(), Redirect: "/"},
					adminRoutes(),
					{
						Group: RoleSet(domainauth.RoleTeacher),
						Children: []Route{
							{Path: "/teacher_dashboard", Group: RoleSet(domainauth.RoleTeacher), Page: "teacher_dashboard", Title: "Teacher Dashboard"},
						},
					},
					{
						Group: RoleSet(domainauth.RoleParent),
						Children: []Route{
							{Path: "/parent_dashboard", Group: RoleSet(domainauth.RoleParent), Page: "parent_dashboard", Title: "Parent Dashboard"},
							{Path: "/leave", Group: RoleSet(domainauth.RoleParent), Page: "leave_application", Title: "Leave Application"},
							{Path: "/bus-tracking", Group: RoleSet(domainauth.RoleParent), Page: "bus_tracking", Title: "Bus Tracking"},
						},
					},
					{
						Group: RoleSet(domainauth.RoleStudent),
						Children: []Route{
							{Path: "/student_dashboard", Group: RoleSet(domainauth.RoleStudent), Page: "student_dashboard", Title: "Student Dashboard"},
						},
					},
					commonRoutes(),
				},
			},
			{Path: CatchAll, Group: AdminOnly(), Redirect: "/"},
		},
	}
}

func adminRoutes() Route {
	admin := AdminOnly()
	return Route{
		Group: admin,
		Children: []Route{
			{Path: "/admin_dashboard", Group: admin, Page: "admin_dashboard", Title: "Admin Dashboard"},
			{Path: "/feedback", Group: admin, Page: "feedback", Title: "Feedback"},
			{Path: "/users/teachers", Group: admin, Page: "teachers", Title: "Teachers"},
			{Path: "/teacher-profile/{teacherID}", Group: admin, Page: "teacher_profile", Title: "Teacher Profile"},
			{Path: "/students-profile", Group: admin, Page: "student_profile", Title: "Student Profile"},
		},
	}
}

func commonRoutes() Route {
	authed := AnyAuthenticated()
	return Route{
		Group: authed,
		Children: []Route{
			{Path: "/attendance", Group: authed, Page: "attendance", Title: "Attendance"},
			{Path: "/view_attendance/{childID}", Group: authed, Page: "view_attendance", Title: "Attendance"},
			{Path: "/hall-of-fame", Group: authed, Page: "hall_of_fame", Title: "Hall of Fame"},
			{Path: "/homework/{classID}", Group: authed, Page: "homework", Title: "Homework"},
			{Path: "/test_marks", Group: authed, Page: "test_marks", Title: "Test Marks"},
			{Path: "/post_marks", Group: authed, Page: "post_marks", Title: "Post Marks"},
			{Path: "/notices", Group: authed, Page: "notices", Title: "Notice Board"},
			{Path: "/notices/new", Group: authed, Page: "create_notice", Title: "New Notice"},
			{Path: "/feedback/submit", Group: authed, Page: "submit_feedback", Title: "Submit Feedback"},
			{Path: "/calendar", Group: authed, Page: "calendar", Title: "School Calendar"},
			{Path: "/view_timetable/{childID}", Group: authed, Page: "timetable", Title: "Timetable"},
			{Path: "/resources", Group: authed, Page: "resources", Title: "Resources"},
			{Path: "/emergency_contact", Group: authed, Page: "emergency_contacts", Title: "Emergency Contacts"},
		},
	}
}
