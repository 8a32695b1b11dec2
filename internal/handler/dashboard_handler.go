package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/service"
	appErrors "github.com/ecoleconnect/portail-api/pkg/errors"
	"github.com/ecoleconnect/portail-api/pkg/response"
)

type dashboardService interface {
	Parent(ctx context.Context, identity *service.Identity) (*dto.ParentDashboardResponse, bool, error)
}

// DashboardHandler wires the dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Parent godoc
// @Summary Parent dashboard
// @Description Aggregate view of the caller's students, fees and notifications
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Parent(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	identity := &service.Identity{ID: claims.ProfileID, Email: claims.Email}
	view, cacheHit, err := h.service.Parent(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("X-Cache", cacheHeader(cacheHit))
	response.JSON(c, http.StatusOK, view, nil)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
