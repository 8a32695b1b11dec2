package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/service"
	appErrors "github.com/ecoleconnect/portail-api/pkg/errors"
	"github.com/ecoleconnect/portail-api/pkg/response"
)

// FeeHandler exposes fee and payment endpoints.
type FeeHandler struct {
	service *service.FeeService
}

// NewFeeHandler constructs the handler.
func NewFeeHandler(svc *service.FeeService) *FeeHandler {
	return &FeeHandler{service: svc}
}

// List godoc
// @Summary List classified fees for own students
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fees, err := h.service.ListFees(c.Request.Context(), claims.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, fees, nil)
}

// Summary godoc
// @Summary Aggregate pending fees
// @Description Count overdue and upcoming fees and sum the pending amount
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /fees/summary [get]
func (h *FeeHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), claims.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// RecordPayment godoc
// @Summary Record a payment against a pending fee
// @Description Insert a completed payment for the full fee amount and mark the fee paid
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.RecordPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, payment)
}

// ListPayments godoc
// @Summary List own payments
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /payments [get]
func (h *FeeHandler) ListPayments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), claims.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, payments, nil)
}

// Receipt godoc
// @Summary Download a payment receipt
// @Description Render the receipt for one of the caller's payments as PDF
// @Tags Payments
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id}/receipt [get]
func (h *FeeHandler) Receipt(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pdf, err := h.service.Receipt(c.Request.Context(), claims.ProfileID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=recu-"+c.Param("id")+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
