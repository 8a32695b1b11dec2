package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleconnect/portail-api/internal/middleware"
	"github.com/ecoleconnect/portail-api/internal/models"
	"github.com/ecoleconnect/portail-api/internal/repository"
	"github.com/ecoleconnect/portail-api/internal/service"
)

type fakeFeeStore struct {
	fee *models.StudentFeeDetail
}

func (f *fakeFeeStore) ListByStudentIDs(context.Context, []string) ([]models.StudentFeeDetail, error) {
	if f.fee == nil {
		return nil, nil
	}
	return []models.StudentFeeDetail{*f.fee}, nil
}

func (f *fakeFeeStore) FindByID(context.Context, string) (*models.StudentFeeDetail, error) {
	return f.fee, nil
}

type fakePaymentTx struct {
	err error
}

func (f *fakePaymentTx) ListByParent(context.Context, string) ([]models.Payment, error) {
	return nil, nil
}

func (f *fakePaymentTx) FindByID(context.Context, string) (*models.Payment, error) {
	return nil, nil
}

func (f *fakePaymentTx) CreateWithFeeTransition(context.Context, *models.Payment) error {
	return f.err
}

type fakeStudentStore struct {
	students []models.Student
}

func (f *fakeStudentStore) ListByParent(context.Context, string) ([]models.Student, error) {
	return f.students, nil
}

func newFeeHandlerForTest(paymentErr error) *FeeHandler {
	fee := &models.StudentFeeDetail{
		StudentFee: models.StudentFee{
			ID:        "f-1",
			StudentID: "s-1",
			Amount:    80,
			DueDate:   time.Now().AddDate(0, 0, 7),
			Status:    models.FeeStatusPending,
		},
	}
	svc := service.NewFeeService(service.FeeServiceParams{
		Fees:     &fakeFeeStore{fee: fee},
		Payments: &fakePaymentTx{err: paymentErr},
		Students: &fakeStudentStore{students: []models.Student{{ID: "s-1", ParentID: "p-1"}}},
		Profiles: &fakeProfileStore{profile: &models.Profile{ID: "p-1"}},
	})
	return NewFeeHandler(svc)
}

func paymentRequest(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{ProfileID: "p-1", Role: models.RoleParent})
	return c, rec
}

func TestFeeHandlerRecordPayment(t *testing.T) {
	handler := newFeeHandlerForTest(nil)
	c, rec := paymentRequest(t, `{"student_fee_id":"f-1","payment_method":"card"}`)

	handler.RecordPayment(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.Payment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 80.0, envelope.Data.Amount)
	assert.Equal(t, models.PaymentStatusCompleted, envelope.Data.Status)
}

func TestFeeHandlerRecordPaymentDuplicate(t *testing.T) {
	handler := newFeeHandlerForTest(repository.ErrPaymentExists)
	c, rec := paymentRequest(t, `{"student_fee_id":"f-1","payment_method":"card"}`)

	handler.RecordPayment(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "DUPLICATE_PAYMENT", envelope.Error.Code)
}

func TestFeeHandlerRecordPaymentBadPayload(t *testing.T) {
	handler := newFeeHandlerForTest(nil)
	c, rec := paymentRequest(t, `{"payment_method":"card"}`)

	handler.RecordPayment(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
