package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleconnect/portail-api/internal/dto"
	"github.com/ecoleconnect/portail-api/internal/middleware"
	"github.com/ecoleconnect/portail-api/internal/models"
	"github.com/ecoleconnect/portail-api/internal/service"
)

type fakeProfileStore struct {
	profile *models.Profile
	err     error
}

func (f *fakeProfileStore) FindByID(context.Context, string) (*models.Profile, error) {
	return f.profile, f.err
}

func sessionTestContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) dto.SessionResponse {
	t.Helper()
	var envelope struct {
		Data dto.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestSessionHandlerAnonymousRedirectsToLogin(t *testing.T) {
	handler := NewSessionHandler(service.NewRoleService(&fakeProfileStore{}, nil))
	c, rec := sessionTestContext(t, "/session?path=/dashboard")

	handler.Session(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeSession(t, rec)
	assert.Empty(t, data.Role)
	assert.Equal(t, "/login", data.RedirectTo)
	assert.Equal(t, models.Permissions{}, data.Permissions)
	assert.Nil(t, data.Profile)
}

func TestSessionHandlerAdminRedirect(t *testing.T) {
	store := &fakeProfileStore{profile: &models.Profile{ID: "a-1", Role: models.RoleAdmin}}
	handler := NewSessionHandler(service.NewRoleService(store, nil))
	c, rec := sessionTestContext(t, "/session?path=/messages")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{ProfileID: "a-1", Role: models.RoleAdmin})

	handler.Session(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeSession(t, rec)
	assert.Equal(t, models.RoleAdmin, data.Role)
	assert.Equal(t, "/admin/dashboard", data.RedirectTo)
	assert.True(t, data.Permissions.CanManageUsers)
	assert.Empty(t, data.Diagnostic)
}

func TestSessionHandlerAdminAlreadyInPlace(t *testing.T) {
	store := &fakeProfileStore{profile: &models.Profile{ID: "a-1", Role: models.RoleAdmin}}
	handler := NewSessionHandler(service.NewRoleService(store, nil))
	c, rec := sessionTestContext(t, "/session?path=/admin/users")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{ProfileID: "a-1", Role: models.RoleAdmin})

	handler.Session(c)

	data := decodeSession(t, rec)
	assert.Empty(t, data.RedirectTo)
}

func TestSessionHandlerLookupFailureFallsBackToParent(t *testing.T) {
	store := &fakeProfileStore{err: errors.New("profiles table unavailable")}
	handler := NewSessionHandler(service.NewRoleService(store, nil))
	c, rec := sessionTestContext(t, "/session?path=/teacher/dashboard")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{ProfileID: "p-1", Email: "parent@example.com"})

	handler.Session(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeSession(t, rec)
	assert.Equal(t, models.RoleParent, data.Role)
	assert.Equal(t, "/dashboard", data.RedirectTo)
	assert.Equal(t, "profiles table unavailable", data.Diagnostic)
	require.NotNil(t, data.Profile)
	assert.Equal(t, "parent@example.com", data.Profile.Email)
}
