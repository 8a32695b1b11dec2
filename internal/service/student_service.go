package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecoleconnect/portail-api/internal/models"
	appErrors "github.com/ecoleconnect/portail-api/pkg/errors"
)

type studentRepository interface {
	ListByParent(ctx context.Context, parentID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByNumber(ctx context.Context, studentNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for registering a child.
type CreateStudentRequest struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	StudentNumber string `json:"student_number" validate:"required"`
	ClassLevel    string `json:"class_level" validate:"required"`
	DateOfBirth   string `json:"date_of_birth"`
}

// UpdateStudentRequest holds payload for editing a child.
type UpdateStudentRequest struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	StudentNumber string `json:"student_number" validate:"required"`
	ClassLevel    string `json:"class_level" validate:"required"`
	DateOfBirth   string `json:"date_of_birth"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// StudentService handles student use-cases. Students are created and edited
// only by the owning parent or an administrator.
type StudentService struct {
	repo        studentRepository
	invalidator dashboardInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, invalidator dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// List returns the children linked to the parent.
func (s *StudentService) List(ctx context.Context, parentID string) ([]models.Student, error) {
	students, err := s.repo.ListByParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one student, enforcing parent ownership unless the caller is
// an administrator.
func (s *StudentService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Student, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(claims, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Create registers a new child under the calling parent.
func (s *StudentService) Create(ctx context.Context, claims *models.JWTClaims, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByNumber(ctx, req.StudentNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number already used")
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date of birth")
	}
	now := time.Now().UTC()
	student := &models.Student{
		ParentID:       claims.ProfileID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		StudentNumber:  req.StudentNumber,
		ClassLevel:     req.ClassLevel,
		DateOfBirth:    dob,
		EnrollmentDate: &now,
		Status:         models.StudentStatusActive,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.invalidate(ctx, claims.ProfileID)
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(claims, student); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByNumber(ctx, req.StudentNumber, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student number already used")
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date of birth")
	}
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.StudentNumber = req.StudentNumber
	student.ClassLevel = req.ClassLevel
	student.DateOfBirth = dob
	if req.Status != "" {
		student.Status = req.Status
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.invalidate(ctx, student.ParentID)
	return student, nil
}

// Deactivate marks a student inactive.
func (s *StudentService) Deactivate(ctx context.Context, claims *models.JWTClaims, id string) error {
	student, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(claims, student); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	s.invalidate(ctx, student.ParentID)
	return nil
}

func (s *StudentService) find(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *StudentService) checkOwnership(claims *models.JWTClaims, student *models.Student) error {
	if claims.Role == models.RoleAdmin {
		return nil
	}
	if student.ParentID != claims.ProfileID {
		return appErrors.Clone(appErrors.ErrForbidden, "student belongs to another parent")
	}
	return nil
}

func (s *StudentService) invalidate(ctx context.Context, parentID string) {
	if s.invalidator != nil {
		s.invalidator.InvalidateParent(ctx, parentID)
	}
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
