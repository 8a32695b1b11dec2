package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/models"
	"github.com/ecoleconnect/portail-api/internal/repository"
	appErrors "github.com/ecoleconnect/portail-api/pkg/errors"
	"github.com/ecoleconnect/portail-api/pkg/export"
)

// Display labels attached to derived fee states.
const (
	labelPaid     = "Payé"
	labelOverdue  = "En retard"
	labelUpcoming = "À payer"
)

// ClassifyFee derives the fee's state as of the given instant. Paid fees stay
// paid regardless of due date. Pending fees compare due date to asOf by
// calendar date only: a fee due today remains upcoming until the first
// evaluation after midnight. The state is recomputed on every read and never
// persisted.
func ClassifyFee(fee models.StudentFee, asOf time.Time) dto.FeeClassification {
	if fee.Status == models.FeeStatusPaid {
		return dto.FeeClassification{State: dto.FeeStatePaid, Label: labelPaid}
	}
	if fee.Status == models.FeeStatusPending && calendarDate(fee.DueDate).Before(calendarDate(asOf)) {
		return dto.FeeClassification{State: dto.FeeStateOverdue, Label: labelOverdue}
	}
	return dto.FeeClassification{State: dto.FeeStateUpcoming, Label: labelUpcoming}
}

// AggregateFees partitions the pending subset into overdue/upcoming counts
// and sums the amount over all pending fees regardless of the split.
func AggregateFees(fees []models.StudentFeeDetail, asOf time.Time) dto.FeeSummary {
	var summary dto.FeeSummary
	for _, fee := range fees {
		if fee.Status != models.FeeStatusPending {
			continue
		}
		summary.TotalPendingAmount += fee.Amount
		if calendarDate(fee.DueDate).Before(calendarDate(asOf)) {
			summary.OverdueCount++
		} else {
			summary.UpcomingCount++
		}
	}
	return summary
}

func calendarDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type feeReader interface {
	ListByStudentIDs(ctx context.Context, studentIDs []string) ([]models.StudentFeeDetail, error)
	FindByID(ctx context.Context, id string) (*models.StudentFeeDetail, error)
}

type paymentStore interface {
	ListByParent(ctx context.Context, parentID string) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	CreateWithFeeTransition(ctx context.Context, payment *models.Payment) error
}

type studentLister interface {
	ListByParent(ctx context.Context, parentID string) ([]models.Student, error)
}

// paymentNotifier is told about recorded payments; delivery is asynchronous
// and best-effort.
type paymentNotifier interface {
	PaymentRecorded(payment models.Payment, fee models.StudentFeeDetail)
}

// dashboardInvalidator drops cached dashboard payloads after writes.
type dashboardInvalidator interface {
	InvalidateParent(ctx context.Context, parentID string)
}

// FeeService classifies fee obligations and records payments against them.
type FeeService struct {
	fees        feeReader
	payments    paymentStore
	students    studentLister
	profiles    profileFinder
	notifier    paymentNotifier
	invalidator dashboardInvalidator
	receipts    *export.ReceiptRenderer
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// FeeServiceParams groups constructor dependencies.
type FeeServiceParams struct {
	Fees        feeReader
	Payments    paymentStore
	Students    studentLister
	Profiles    profileFinder
	Notifier    paymentNotifier
	Invalidator dashboardInvalidator
	Receipts    *export.ReceiptRenderer
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewFeeService constructs the fee service.
func NewFeeService(params FeeServiceParams) *FeeService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Receipts == nil {
		params.Receipts = export.NewReceiptRenderer("")
	}
	return &FeeService{
		fees:        params.Fees,
		payments:    params.Payments,
		students:    params.Students,
		profiles:    params.Profiles,
		notifier:    params.Notifier,
		invalidator: params.Invalidator,
		receipts:    params.Receipts,
		metrics:     params.Metrics,
		validator:   params.Validator,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// ListFees returns the parent's student fees, classified as of now. The fee
// fetch depends on the student list completing first since it needs the
// student id set.
func (s *FeeService) ListFees(ctx context.Context, parentID string) ([]dto.ClassifiedFee, error) {
	students, err := s.students.ListByParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	fees, err := s.listFeesForStudents(ctx, students)
	if err != nil {
		return nil, err
	}
	return s.classifyAll(fees), nil
}

// Summary aggregates the parent's pending fees.
func (s *FeeService) Summary(ctx context.Context, parentID string) (*dto.FeeSummary, error) {
	students, err := s.students.ListByParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	fees, err := s.listFeesForStudents(ctx, students)
	if err != nil {
		return nil, err
	}
	summary := AggregateFees(fees, s.now())
	return &summary, nil
}

func (s *FeeService) listFeesForStudents(ctx context.Context, students []models.Student) ([]models.StudentFeeDetail, error) {
	if len(students) == 0 {
		return nil, nil
	}
	ids := make([]string, len(students))
	for i, student := range students {
		ids[i] = student.ID
	}
	fees, err := s.fees.ListByStudentIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	return fees, nil
}

func (s *FeeService) classifyAll(fees []models.StudentFeeDetail) []dto.ClassifiedFee {
	asOf := s.now()
	classified := make([]dto.ClassifiedFee, len(fees))
	for i, fee := range fees {
		classified[i] = dto.ClassifiedFee{
			StudentFeeDetail: fee,
			Classification:   ClassifyFee(fee.StudentFee, asOf),
		}
	}
	return classified
}

// RecordPayment records a full-amount payment against a pending fee. The
// payment insert and the fee's pending→paid transition run in one database
// transaction; a second payment for the same fee is rejected with
// DUPLICATE_PAYMENT rather than creating a second row.
func (s *FeeService) RecordPayment(ctx context.Context, parentID string, req dto.RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	fee, err := s.fees.FindByID(ctx, req.StudentFeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee")
	}

	if err := s.checkFeeOwnership(ctx, parentID, fee.StudentID); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ParentID:      parentID,
		StudentFeeID:  fee.ID,
		Amount:        fee.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        models.PaymentStatusCompleted,
		PaymentDate:   s.now().UTC(),
	}
	if req.Notes != "" {
		notes := req.Notes
		payment.Notes = &notes
	}

	if err := s.payments.CreateWithFeeTransition(ctx, payment); err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentExists):
			return nil, appErrors.Clone(appErrors.ErrDuplicatePayment, "")
		case errors.Is(err, repository.ErrFeeNotPending):
			return nil, appErrors.Clone(appErrors.ErrFeeNotPending, "")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
		}
	}

	if s.metrics != nil {
		s.metrics.RecordPayment()
	}
	if s.notifier != nil {
		s.notifier.PaymentRecorded(*payment, *fee)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateParent(ctx, parentID)
	}

	return payment, nil
}

// ListPayments returns the parent's payment history, newest first.
func (s *FeeService) ListPayments(ctx context.Context, parentID string) ([]models.Payment, error) {
	payments, err := s.payments.ListByParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}

// Receipt renders a PDF receipt for one of the parent's completed payments.
func (s *FeeService) Receipt(ctx context.Context, parentID, paymentID string) ([]byte, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.ParentID != parentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "payment belongs to another parent")
	}

	fee, err := s.fees.FindByID(ctx, payment.StudentFeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee for receipt")
	}

	receipt := export.Receipt{
		PaymentID:     payment.ID,
		PaymentDate:   payment.PaymentDate,
		StudentName:   fee.StudentFirstName + " " + fee.StudentLastName,
		FeeName:       fee.FeeTypeName,
		FeeCategory:   fee.FeeTypeCategory,
		AcademicYear:  fee.AcademicYear,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
	}
	if payment.Notes != nil {
		receipt.Notes = *payment.Notes
	}
	if profile, err := s.profiles.FindByID(ctx, parentID); err == nil {
		receipt.ParentName = profile.FullName()
	} else {
		s.logger.Warn("receipt parent lookup failed", zap.String("parent_id", parentID), zap.Error(err))
	}

	pdf, err := s.receipts.Render(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return pdf, nil
}

func (s *FeeService) checkFeeOwnership(ctx context.Context, parentID, studentID string) error {
	students, err := s.students.ListByParent(ctx, parentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify fee ownership")
	}
	for _, student := range students {
		if student.ID == studentID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "fee belongs to another parent's student")
}
