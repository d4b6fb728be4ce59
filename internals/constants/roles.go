package constants

// Staff roles on school_teachers.
const (
	RoleTeacher        = "teacher"
	RoleLeadTeacher    = "lead_teacher"
	RoleSubjectTeacher = "subject_teacher"
	RoleAdminStaff     = "admin_staff"
	RolePrincipal      = "principal"
)

// TeachingCapableRoles are the roles allowed to carry homeroom, subject
// and teaching-load assignments across an academic-year transition.
var TeachingCapableRoles = map[string]bool{
	RoleTeacher:        true,
	RoleLeadTeacher:    true,
	RoleSubjectTeacher: true,
}
