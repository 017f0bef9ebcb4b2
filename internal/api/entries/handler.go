// Package entries serves entry drafts and versions.
package entries

import (
	"net/http"

	"blocks-cms/internal/api/apierr"
	"blocks-cms/internal/domain/versions"

	"github.com/gin-gonic/gin"
)

type CreateDraftRequest struct {
	LanguageCode string `json:"language_code"`
	FromVersion  string `json:"from_version"`
}

type EditDraftRequest struct {
	Value any `json:"value"`
}

type PublishRequest struct {
	Notes string `json:"notes"`
}

type Handler struct {
	versions *versions.Service
}

func NewHandler(vs *versions.Service) *Handler {
	return &Handler{versions: vs}
}

// POST /entries/:id/drafts
func (h *Handler) CreateDraft(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var req CreateDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.BadRequest(c, "Invalid input", err)
			return
		}
	}
	var opts []versions.DraftOption
	if req.LanguageCode != "" {
		opts = append(opts, versions.InLanguage(req.LanguageCode))
	}
	if req.FromVersion != "" {
		opts = append(opts, versions.FromVersion(req.FromVersion))
	}
	d, err := h.versions.CreateDraft(c.Request.Context(), id, opts...)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GET /entries/:id/drafts
func (h *Handler) ListDrafts(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.versions.ListDrafts(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /entries/:id/versions
func (h *Handler) ListVersions(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.versions.ListVersions(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /entries/:id/versions/:version/revert
func (h *Handler) Revert(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	d, err := h.versions.Revert(c.Request.Context(), id, c.Param("version"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GET /drafts/:draft
func (h *Handler) GetDraft(c *gin.Context) {
	d, err := h.versions.GetDraft(c.Request.Context(), c.Param("draft"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// PUT /drafts/:draft/blocks/:block
func (h *Handler) EditDraft(c *gin.Context) {
	blockID, ok := apierr.UintParam(c, "block")
	if !ok {
		return
	}
	var req EditDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	ctx := c.Request.Context()
	if err := h.versions.EditDraft(ctx, c.Param("draft"), blockID, req.Value); err != nil {
		apierr.Write(c, err)
		return
	}
	d, err := h.versions.GetDraft(ctx, c.Param("draft"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// POST /drafts/:draft/publish
func (h *Handler) Publish(c *gin.Context) {
	var req PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.BadRequest(c, "Invalid input", err)
			return
		}
	}
	v, err := h.versions.Publish(c.Request.Context(), c.Param("draft"), versions.WithNotes(req.Notes))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// DELETE /drafts/:draft
func (h *Handler) Discard(c *gin.Context) {
	if err := h.versions.Discard(c.Request.Context(), c.Param("draft")); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /versions/:version
func (h *Handler) GetVersion(c *gin.Context) {
	v, err := h.versions.GetVersion(c.Request.Context(), c.Param("version"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
