package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/service"
	"github.com/ecoleconnect/portail-api/pkg/response"
)

// SessionHandler resolves the caller's role and landing route.
type SessionHandler struct {
	roles *service.RoleService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(roles *service.RoleService) *SessionHandler {
	return &SessionHandler{roles: roles}
}

// Session godoc
// @Summary Resolve current session
// @Description Return the caller's profile, role, capability set and the route the client should navigate to. Unauthenticated callers resolve to a /login redirect.
// @Tags Session
// @Produce json
// @Param path query string false "Current client route, used to decide whether a redirect is needed"
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Session(c *gin.Context) {
	var identity *service.Identity
	if claims := claimsFromContext(c); claims != nil {
		identity = &service.Identity{ID: claims.ProfileID, Email: claims.Email}
	}
	session := h.roles.Resolve(c.Request.Context(), identity)

	res := dto.SessionResponse{
		Profile:     session.Profile,
		Role:        session.Role,
		RedirectTo:  h.roles.RedirectFor(session.Role, c.Query("path")),
		Permissions: h.roles.PermissionsFor(session.Role),
		Diagnostic:  session.Diagnostic,
	}

	response.JSON(c, http.StatusOK, res, nil)
}
