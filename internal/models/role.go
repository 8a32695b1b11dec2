package models

// Role enumerates the four portal roles. The type is closed: the redirect
// and permission tables below are total over these values, so adding a role
// requires updating both.
type Role string

const (
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// AllRoles lists every valid role value.
var AllRoles = []Role{RoleParent, RoleAdmin, RoleTeacher, RoleStudent}

// Valid reports whether the role is one of the four known values.
func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Permissions is the fixed capability set attached to a role.
type Permissions struct {
	CanManageUsers     bool `json:"can_manage_users"`
	CanManageStudents  bool `json:"can_manage_students"`
	CanManagePayments  bool `json:"can_manage_payments"`
	CanViewReports     bool `json:"can_view_reports"`
	CanManageClasses   bool `json:"can_manage_classes"`
	CanGradeStudents   bool `json:"can_grade_students"`
	CanViewOwnGrades   bool `json:"can_view_own_grades"`
	CanMessageTeachers bool `json:"can_message_teachers"`
}

// rolePermissions is the sole source of truth for authorization decisions.
// Every role has an explicit entry.
var rolePermissions = map[Role]Permissions{
	RoleAdmin: {
		CanManageUsers:     true,
		CanManageStudents:  true,
		CanManagePayments:  true,
		CanViewReports:     true,
		CanManageClasses:   true,
		CanGradeStudents:   true,
		CanViewOwnGrades:   true,
		CanMessageTeachers: true,
	},
	RoleTeacher: {
		CanManageClasses:   true,
		CanGradeStudents:   true,
		CanMessageTeachers: true,
	},
	RoleStudent: {
		CanViewOwnGrades:   true,
		CanMessageTeachers: true,
	},
	RoleParent: {
		CanManagePayments:  true,
		CanMessageTeachers: true,
	},
}

// PermissionsFor returns the capability set for the role. Unknown roles get
// the empty set.
func PermissionsFor(role Role) Permissions {
	return rolePermissions[role]
}
