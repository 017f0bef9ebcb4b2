package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"blocks-cms/config"
	"blocks-cms/internal/dbtest"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/owners"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type api struct {
	t        *testing.T
	r        *gin.Engine
	services *Services
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JWT_SECRET = testSecret

	db, reg := dbtest.Open(t)
	s, err := NewServices(db, reg, "en")
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r, s)
	return &api{t: t, r: r, services: s}
}

func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"email":   fmt.Sprintf("user%d@example.com", userID),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *api) do(method, path, tok string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestHealthIsPublic(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestRequiresToken(t *testing.T) {
	a := newAPI(t)
	code, _ := a.do(http.MethodGet, "/models", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodGet, "/models", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestModelsResolveAliases(t *testing.T) {
	a := newAPI(t)
	tok := token(t, 1, "editor")

	code, body := a.do(http.MethodGet, "/models/bLanguages", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Language", body["name"])

	code, _ = a.do(http.MethodGet, "/models/Nope", tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDraftPublishFlow(t *testing.T) {
	a := newAPI(t)
	admin := token(t, 1, "admin")

	code, block := a.do(http.MethodPost, "/admin/blocks", admin, map[string]any{
		"name": "Body", "handle": "body", "model": "PlainText", "required": true,
	})
	require.Equal(t, http.StatusCreated, code)
	blockID := uint(block["id"].(float64))

	code, sec := a.do(http.MethodPost, "/owners/Section", admin, map[string]any{"name": "Blog", "handle": "blog"})
	require.Equal(t, http.StatusCreated, code)
	sectionID := uint(sec["id"].(float64))

	code, entry := a.do(http.MethodPost, "/owners/Entry", admin, map[string]any{"section_id": sectionID, "slug": "first"})
	require.Equal(t, http.StatusCreated, code)
	entryID := uint(entry["id"].(float64))

	code, _ = a.do(http.MethodPost, fmt.Sprintf("/admin/layouts/Section/%d", sectionID), admin, map[string]any{"block_id": blockID})
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.do(http.MethodPost, fmt.Sprintf("/admin/layouts/Section/%d", sectionID), admin, map[string]any{"block_id": blockID})
	assert.Equal(t, http.StatusConflict, code)

	code, draft := a.do(http.MethodPost, fmt.Sprintf("/entries/%d/drafts", entryID), admin, nil)
	require.Equal(t, http.StatusCreated, code)
	draftID := draft["id"].(string)

	code, _ = a.do(http.MethodPost, "/drafts/"+draftID+"/publish", admin, nil)
	assert.Equal(t, http.StatusConflict, code)

	text := "Tom & Jerry <3 x<y"
	code, edited := a.do(http.MethodPut, fmt.Sprintf("/drafts/%s/blocks/%d", draftID, blockID), admin, map[string]any{"value": text})
	require.Equal(t, http.StatusOK, code)
	values := edited["values"].(map[string]any)
	assert.Equal(t, text, values[fmt.Sprint(blockID)])

	code, version := a.do(http.MethodPost, "/drafts/"+draftID+"/publish", admin, map[string]any{"notes": "first cut<script>x</script>"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(1), version["num"])
	assert.Equal(t, "first cut", version["notes"])

	code, live := a.do(http.MethodGet, fmt.Sprintf("/content/Entry/%d/en", entryID), admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, text, live["values"].(map[string]any)[fmt.Sprint(blockID)])

	code, _ = a.do(http.MethodGet, "/drafts/"+draftID, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestContentValidationIs422(t *testing.T) {
	a := newAPI(t)
	admin := token(t, 1, "admin")

	code, block := a.do(http.MethodPost, "/admin/blocks", admin, map[string]any{
		"name": "Count", "handle": "count", "model": "Number",
	})
	require.Equal(t, http.StatusCreated, code)
	id := fmt.Sprint(block["id"])

	code, body := a.do(http.MethodPut, "/content/Entry/1/en", admin, map[string]any{
		"values": map[string]any{id: "many"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, body["fields"])

	code, _ = a.do(http.MethodPut, "/content/Section/1/en", admin, map[string]any{
		"values": map[string]any{id: 3},
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEditorNeedsGroupPermission(t *testing.T) {
	a := newAPI(t)
	editor := token(t, 7, "editor")
	ctx := context.Background()

	sec, err := a.services.Owners.Create(ctx, catalog.Section, map[string]any{"name": "Blog", "handle": "blog"})
	require.NoError(t, err)
	entry, err := a.services.Owners.Create(ctx, catalog.Entry, map[string]any{"section_id": sec.(*owners.Section).ID})
	require.NoError(t, err)
	drafts := fmt.Sprintf("/entries/%d/drafts", entry.(*owners.Entry).ID)

	code, _ := a.do(http.MethodPost, drafts, editor, nil)
	assert.Equal(t, http.StatusForbidden, code)

	_, err = a.services.UserGroups.AddMember(ctx, 3, 7)
	require.NoError(t, err)
	_, err = a.services.UserGroups.SetPermission(ctx, 3, PermEditContent, 1)
	require.NoError(t, err)

	code, _ = a.do(http.MethodPost, drafts, editor, nil)
	assert.Equal(t, http.StatusCreated, code)

	code, _ = a.do(http.MethodPost, "/entries/999/drafts", editor, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/admin/languages", editor, map[string]any{"language_code": "de"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdminSystemRecords(t *testing.T) {
	a := newAPI(t)
	admin := token(t, 1, "admin")

	code, _ := a.do(http.MethodPost, "/admin/languages", admin, map[string]any{"language_code": "de"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.do(http.MethodPost, "/admin/languages", admin, map[string]any{"language_code": "de"})
	assert.Equal(t, http.StatusConflict, code)

	code, key := a.do(http.MethodPost, "/admin/license-keys", admin, nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Len(t, key["license_key"], 36)

	code, _ = a.do(http.MethodPut, "/admin/info", admin, map[string]any{
		"version": "1.0.0", "build": "100", "release_date": "2024-05-01",
	})
	require.Equal(t, http.StatusOK, code)
	code, info := a.do(http.MethodGet, "/info", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1.0.0", info["version"])
}

func TestLoginIssuesUsableToken(t *testing.T) {
	a := newAPI(t)
	ctx := context.Background()

	row, err := a.services.Owners.Create(ctx, catalog.User, map[string]any{"username": "ada", "email": "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, a.services.Owners.SetCredentials(ctx, row.(*owners.User).ID, "p&ssw0rd<1", owners.RoleAdmin))

	code, _ := a.do(http.MethodPost, "/login", "", map[string]any{"username": "ada", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := a.do(http.MethodPost, "/login", "", map[string]any{"username": "ada", "password": "p&ssw0rd<1"})
	require.Equal(t, http.StatusOK, code)
	tok := body["token"].(string)

	code, _ = a.do(http.MethodGet, "/admin/license-keys", tok, nil)
	assert.Equal(t, http.StatusOK, code)

	_, err = a.services.UserGroups.AddMember(ctx, 4, row.(*owners.User).ID)
	require.NoError(t, err)
	_, err = a.services.UserGroups.SetPermission(ctx, 4, PermPublish, 2)
	require.NoError(t, err)

	code, me := a.do(http.MethodGet, "/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ada", me["user"].(map[string]any)["username"])
	assert.Equal(t, "admin", me["user"].(map[string]any)["role"])
	assert.Equal(t, []any{float64(4)}, me["groups"])
	assert.Equal(t, map[string]any{PermPublish: float64(2)}, me["permissions"])

	code, stats := a.do(http.MethodGet, "/admin/stats", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), stats["rows"].(map[string]any)["users"])
}
