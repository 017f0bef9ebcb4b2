package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoRouter(fields ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/echo", SanitizeAndCleanInputMiddleware(bluemonday.UGCPolicy(), fields...), func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	})
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSanitizeOnlyNamedFields(t *testing.T) {
	r := echoRouter("instructions")

	w := post(r, `{
		"instructions": "<b>Use</b> it<script>alert(1)</script>",
		"values": {"1": "Tom & Jerry <3 x<y", "2": "https://example.com/?a=1&b=2"},
		"count": 12345678901234
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"instructions": "<b>Use</b> it",
		"values": {"1": "Tom & Jerry <3 x<y", "2": "https://example.com/?a=1&b=2"},
		"count": 12345678901234
	}`, w.Body.String())
}

func TestSanitizeNestedAndEmptyBodies(t *testing.T) {
	r := echoRouter("notes")

	w := post(r, `{"notes": ["ok", {"text": "<i>fine</i><script>x</script>"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"notes": ["ok", {"text": "<i>fine</i>"}]}`, w.Body.String())

	w = post(r, ``)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = post(r, `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
