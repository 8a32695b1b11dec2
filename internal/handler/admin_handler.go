package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/models"
	"github.com/ecoleconnect/portail-api/pkg/response"
)

type adminService interface {
	Stats(ctx context.Context) (*dto.AdminStatsResponse, error)
	ListUsers(ctx context.Context) ([]models.Profile, error)
}

// AdminHandler exposes the admin overview endpoints.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(svc adminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// Stats godoc
// @Summary School-wide statistics
// @Description Headcounts by role, active student count and payment aggregates
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Users godoc
// @Summary List all user profiles
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}
