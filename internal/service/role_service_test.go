package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleconnect/portail-api/internal/models"
)

type fakeProfileFinder struct {
	profile *models.Profile
	err     error
}

func (f *fakeProfileFinder) FindByID(context.Context, string) (*models.Profile, error) {
	return f.profile, f.err
}

func TestRoleServiceResolveNilIdentity(t *testing.T) {
	svc := NewRoleService(&fakeProfileFinder{}, nil)

	session := svc.Resolve(context.Background(), nil)

	require.NotNil(t, session)
	assert.Nil(t, session.Profile)
	assert.Empty(t, session.Role)
}

func TestRoleServiceResolveLookupFailureSynthesizesParent(t *testing.T) {
	svc := NewRoleService(&fakeProfileFinder{err: errors.New("connection refused")}, nil)

	session := svc.Resolve(context.Background(), &Identity{ID: "p-1", Email: "parent@example.com"})

	require.NotNil(t, session.Profile)
	assert.Equal(t, "p-1", session.Profile.ID)
	assert.Equal(t, "parent@example.com", session.Profile.Email)
	assert.Equal(t, models.RoleParent, session.Role)
	assert.Equal(t, "connection refused", session.Diagnostic)
}

func TestRoleServiceResolveInvalidRoleDefaultsToParent(t *testing.T) {
	svc := NewRoleService(&fakeProfileFinder{profile: &models.Profile{ID: "p-1", Role: models.Role("director")}}, nil)

	session := svc.Resolve(context.Background(), &Identity{ID: "p-1"})

	assert.Equal(t, models.RoleParent, session.Role)
	assert.Empty(t, session.Diagnostic)
}

func TestRoleServiceResolveKeepsValidRole(t *testing.T) {
	svc := NewRoleService(&fakeProfileFinder{profile: &models.Profile{ID: "t-1", Role: models.RoleTeacher}}, nil)

	session := svc.Resolve(context.Background(), &Identity{ID: "t-1"})

	assert.Equal(t, models.RoleTeacher, session.Role)
}

func TestRoleServiceRedirectFor(t *testing.T) {
	svc := NewRoleService(&fakeProfileFinder{}, nil)

	cases := []struct {
		name        string
		role        models.Role
		currentPath string
		want        string
	}{
		{"admin outside admin area", models.RoleAdmin, "/messages", "/admin/dashboard"},
		{"admin already in admin area", models.RoleAdmin, "/admin/users", ""},
		{"teacher outside teacher area", models.RoleTeacher, "/dashboard", "/teacher/dashboard"},
		{"teacher already in teacher area", models.RoleTeacher, "/teacher/classes", ""},
		{"student outside student area", models.RoleStudent, "/", "/student/dashboard"},
		{"student already in student area", models.RoleStudent, "/student/grades", ""},
		{"parent on teacher route", models.RoleParent, "/teacher/dashboard", "/dashboard"},
		{"parent at root stays", models.RoleParent, "/", ""},
		{"parent already on dashboard", models.RoleParent, "/dashboard", ""},
		{"unknown role goes to login", models.Role(""), "/anywhere", "/login"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.RedirectFor(tc.role, tc.currentPath))
		})
	}
}

func TestRoleServiceRedirectForIsIdempotent(t *testing.T) {
	svc := NewRoleService(&fakeProfileFinder{}, nil)

	paths := []string{"/", "/dashboard", "/admin", "/admin/users", "/teacher", "/teacher/classes", "/student", "/messages", "/login"}
	for _, role := range models.AllRoles {
		for _, path := range paths {
			target := svc.RedirectFor(role, path)
			if target == "" {
				continue
			}
			// Once redirected, evaluating again from the target must not
			// produce another redirect.
			assert.Empty(t, svc.RedirectFor(role, target), "role %s path %s target %s", role, path, target)
		}
	}
}

func TestRoleServicePermissionsTable(t *testing.T) {
	svc := NewRoleService(&fakeProfileFinder{}, nil)

	admin := svc.PermissionsFor(models.RoleAdmin)
	assert.True(t, admin.CanManageUsers)
	assert.True(t, admin.CanManagePayments)
	assert.True(t, admin.CanViewReports)

	teacher := svc.PermissionsFor(models.RoleTeacher)
	assert.True(t, teacher.CanManageClasses)
	assert.True(t, teacher.CanGradeStudents)
	assert.False(t, teacher.CanManageUsers)
	assert.False(t, teacher.CanManagePayments)

	student := svc.PermissionsFor(models.RoleStudent)
	assert.True(t, student.CanViewOwnGrades)
	assert.True(t, student.CanMessageTeachers)
	assert.False(t, student.CanManageStudents)

	parent := svc.PermissionsFor(models.RoleParent)
	assert.True(t, parent.CanManagePayments)
	assert.True(t, parent.CanMessageTeachers)
	assert.False(t, parent.CanManageUsers)

	// Unknown roles resolve to an empty capability set, never a panic.
	unknown := svc.PermissionsFor(models.Role("director"))
	assert.Equal(t, models.Permissions{}, unknown)
}
