package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blocks-cms/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JWT_SECRET = "middleware-secret"

	r := gin.New()
	r.GET("/whoami", AuthMiddleware(), func(c *gin.Context) {
		claims := c.MustGet("claims").(*Claims)
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id"), "role": c.GetString("role"), "email": claims.Email})
	})
	r.GET("/admin", AuthMiddleware(), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func call(r *gin.Engine, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareSetsClaims(t *testing.T) {
	r := authRouter(t)
	tok, err := SignToken(Claims{
		UserID:           7,
		Email:            "ed@example.com",
		Role:             "editor",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	require.NoError(t, err)

	w := call(r, "/whoami", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"editor","email":"ed@example.com"}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, call(r, "/admin", tok).Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r := authRouter(t)

	expired, err := SignToken(Claims{
		UserID:           1,
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	require.NoError(t, err)

	noUser, err := SignToken(Claims{Role: "admin"})
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Role: "admin"}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1, Role: "admin"}).SignedString([]byte(config.JWT_SECRET))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"missing": "",
		"expired": expired,
		"no user": noUser,
		"foreign": foreign,
		"alg":     wrongAlg,
	} {
		assert.Equal(t, http.StatusUnauthorized, call(r, "/whoami", tok).Code, name)
	}

	admin, err := SignToken(Claims{UserID: 1, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, call(r, "/admin", admin).Code)
}
