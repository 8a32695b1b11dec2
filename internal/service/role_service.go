package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecoleconnect/portail-api/internal/models"
)

type profileFinder interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// Identity is the externally authenticated principal. For requests carrying a
// valid access token it is derived from the claims.
type Identity struct {
	ID    string
	Email string
}

// ResolvedSession is the outcome of role resolution for one identity.
type ResolvedSession struct {
	Profile *models.Profile
	Role    models.Role
	// Diagnostic holds the underlying lookup error message when the profile
	// could not be fetched and a default parent profile was synthesized. It
	// is informational; callers may ignore it.
	Diagnostic string
}

// RoleService resolves identities to roles and owns the redirect and
// permission tables.
type RoleService struct {
	profiles profileFinder
	logger   *zap.Logger
}

// NewRoleService constructs the role service.
func NewRoleService(profiles profileFinder, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{profiles: profiles, logger: logger}
}

// Resolve maps an authenticated identity to its profile and role.
//
// A nil identity resolves to an empty role; callers must treat that as
// unauthenticated. A failed or empty profile lookup is recovered locally by
// synthesizing an in-memory default parent profile (nothing is persisted)
// and the lookup error is carried as a non-fatal diagnostic. Profiles whose
// role column is empty default to parent; legacy rows may lack the column.
func (s *RoleService) Resolve(ctx context.Context, identity *Identity) *ResolvedSession {
	if identity == nil {
		return &ResolvedSession{}
	}

	profile, err := s.profiles.FindByID(ctx, identity.ID)
	if err != nil {
		s.logger.Warn("profile lookup failed, synthesizing default parent profile",
			zap.String("identity_id", identity.ID),
			zap.Error(err))
		now := time.Now().UTC()
		fallback := &models.Profile{
			ID:        identity.ID,
			Email:     identity.Email,
			FirstName: "",
			LastName:  "",
			Role:      models.RoleParent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return &ResolvedSession{Profile: fallback, Role: models.RoleParent, Diagnostic: err.Error()}
	}

	role := profile.Role
	if !role.Valid() {
		role = models.RoleParent
	}
	return &ResolvedSession{Profile: profile, Role: role}
}

// RedirectFor returns the path the client should navigate to given the
// resolved role and its current location. The empty string means the current
// path already satisfies the role's landing rule and no navigation is needed,
// which makes the decision idempotent.
func (s *RoleService) RedirectFor(role models.Role, currentPath string) string {
	switch role {
	case models.RoleAdmin:
		if !strings.HasPrefix(currentPath, "/admin") {
			return "/admin/dashboard"
		}
	case models.RoleTeacher:
		if !strings.HasPrefix(currentPath, "/teacher") {
			return "/teacher/dashboard"
		}
	case models.RoleStudent:
		if !strings.HasPrefix(currentPath, "/student") {
			return "/student/dashboard"
		}
	case models.RoleParent:
		if !strings.HasPrefix(currentPath, "/dashboard") && currentPath != "/" {
			return "/dashboard"
		}
	default:
		return "/login"
	}
	return ""
}

// PermissionsFor exposes the static capability table.
func (s *RoleService) PermissionsFor(role models.Role) models.Permissions {
	return models.PermissionsFor(role)
}
