// Package system serves the model registry and installation records.
package system

import (
	"net/http"

	"blocks-cms/internal/api/apierr"
	"blocks-cms/internal/domain/registry"
	ds "blocks-cms/internal/domain/system"
	"blocks-cms/internal/domain/usergroups"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	reg    *registry.Registry
	system *ds.Service
	groups *usergroups.Service
}

func NewHandler(reg *registry.Registry, ss *ds.Service, gs *usergroups.Service) *Handler {
	return &Handler{reg: reg, system: ss, groups: gs}
}

// GET /models
func (h *Handler) ListModels(c *gin.Context) {
	models := h.reg.Models()
	out := make([]ModelDTO, 0, len(models))
	for _, m := range models {
		out = append(out, toModelDTO(m))
	}
	c.JSON(http.StatusOK, gin.H{"models": out, "aliases": h.reg.Aliases()})
}

// GET /models/:name
func (h *Handler) GetModel(c *gin.Context) {
	d, err := h.reg.Resolve(c.Param("name"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, toModelDTO(d))
}

// GET /languages
func (h *Handler) ListLanguages(c *gin.Context) {
	list, err := h.system.Languages(c.Request.Context())
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /languages
func (h *Handler) AddLanguage(c *gin.Context) {
	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	l, err := h.system.AddLanguage(c.Request.Context(), req.LanguageCode)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// DELETE /languages/:code
func (h *Handler) RemoveLanguage(c *gin.Context) {
	if err := h.system.RemoveLanguage(c.Request.Context(), c.Param("code")); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /info
func (h *Handler) GetInfo(c *gin.Context) {
	info, err := h.system.Info(c.Request.Context())
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// PUT /info
func (h *Handler) SetInfo(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	info, err := h.system.SetInfo(c.Request.Context(), values)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GET /settings/:category
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.system.Settings(c.Request.Context(), c.Param("category"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PUT /settings/:category
func (h *Handler) PutSettings(c *gin.Context) {
	var settings map[string]any
	if err := c.ShouldBindJSON(&settings); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	row, err := h.system.PutSettings(c.Request.Context(), c.Param("category"), settings)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// GET /license-keys
func (h *Handler) ListLicenseKeys(c *gin.Context) {
	list, err := h.system.LicenseKeys(c.Request.Context())
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /license-keys
func (h *Handler) AddLicenseKey(c *gin.Context) {
	var req LicenseKeyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.BadRequest(c, "Invalid input", err)
			return
		}
	}
	lk, err := h.system.AddLicenseKey(c.Request.Context(), req.LicenseKey)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, lk)
}

// DELETE /license-keys/:key
func (h *Handler) RemoveLicenseKey(c *gin.Context) {
	if err := h.system.RemoveLicenseKey(c.Request.Context(), c.Param("key")); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /usergroups/:id/members
func (h *Handler) ListMembers(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	ids, err := h.groups.Members(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_ids": ids})
}

// POST /usergroups/:id/members
func (h *Handler) AddMember(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	m, err := h.groups.AddMember(c.Request.Context(), id, req.UserID)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// DELETE /usergroups/:id/members/:user
func (h *Handler) RemoveMember(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := apierr.UintParam(c, "user")
	if !ok {
		return
	}
	if err := h.groups.RemoveMember(c.Request.Context(), id, userID); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /usergroups/:id/permissions
func (h *Handler) ListPermissions(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.groups.Permissions(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PUT /usergroups/:id/permissions
func (h *Handler) SetPermission(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	p, err := h.groups.SetPermission(c.Request.Context(), id, req.Name, req.Value)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
