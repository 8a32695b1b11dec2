package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleconnect/portail-api/internal/models"
	"github.com/ecoleconnect/portail-api/internal/service"
)

const testAccessSecret = "test-secret"

func newTestAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret: testAccessSecret,
		AccessTokenExpiry: time.Minute,
		Issuer:            "portail-test",
	})
}

func signTestToken(t *testing.T, profileID string, role models.Role) string {
	t.Helper()
	claims := &models.JWTClaims{
		ProfileID: profileID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "portail-test",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
	require.NoError(t, err)
	return token
}

func optionalJWTContext(t *testing.T, authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/session", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	return c, rec
}

func TestOptionalJWTNoHeaderPassesThrough(t *testing.T) {
	c, _ := optionalJWTContext(t, "")

	OptionalJWT(newTestAuthService())(c)

	assert.False(t, c.IsAborted())
	_, exists := c.Get(ContextUserKey)
	assert.False(t, exists)
}

func TestOptionalJWTInvalidTokenPassesThrough(t *testing.T) {
	c, _ := optionalJWTContext(t, "Bearer not-a-token")

	OptionalJWT(newTestAuthService())(c)

	assert.False(t, c.IsAborted())
	_, exists := c.Get(ContextUserKey)
	assert.False(t, exists)
}

func TestOptionalJWTValidTokenAttachesClaims(t *testing.T) {
	token := signTestToken(t, "p-1", models.RoleParent)
	c, _ := optionalJWTContext(t, "Bearer "+token)

	OptionalJWT(newTestAuthService())(c)

	assert.False(t, c.IsAborted())
	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims, ok := value.(*models.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "p-1", claims.ProfileID)
	assert.Equal(t, models.RoleParent, claims.Role)
}

func TestJWTMissingHeaderAborts(t *testing.T) {
	c, rec := optionalJWTContext(t, "")

	JWT(newTestAuthService())(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
