// Package content serves blocks, layouts, owners and live content.
package content

import (
	"net/http"

	"blocks-cms/internal/api/apierr"
	"blocks-cms/internal/domain/blocks"
	dc "blocks-cms/internal/domain/content"
	"blocks-cms/internal/domain/layouts"
	"blocks-cms/internal/domain/owners"
	"blocks-cms/internal/domain/registry"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	reg     *registry.Registry
	blocks  *blocks.Service
	layouts *layouts.Service
	owners  *owners.Service
}

func NewHandler(db *gorm.DB, reg *registry.Registry, bs *blocks.Service, ls *layouts.Service, os *owners.Service) *Handler {
	return &Handler{db: db, reg: reg, blocks: bs, layouts: ls, owners: os}
}

func (h *Handler) store(c *gin.Context) (*dc.Store, bool) {
	s, err := dc.NewStore(h.db, h.reg, c.Param("model"), h.blocks)
	if err != nil {
		apierr.Write(c, err)
		return nil, false
	}
	return s, true
}

// ------------------------------
// Blocks
// ------------------------------

// GET /blocks
func (h *Handler) ListBlocks(c *gin.Context) {
	list, err := h.blocks.List(c.Request.Context())
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /blocks/:id
func (h *Handler) GetBlock(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	b, err := h.blocks.Get(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /blocks
func (h *Handler) CreateBlock(c *gin.Context) {
	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	b, err := h.blocks.Create(c.Request.Context(), blocks.Definition{
		Name:         req.Name,
		Handle:       req.Handle,
		Model:        req.Model,
		Required:     req.Required,
		Translatable: req.Translatable,
		Title:        req.Title,
		Instructions: req.Instructions,
		Settings:     req.Settings,
	})
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// DELETE /blocks/:id
func (h *Handler) DeleteBlock(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	if err := h.blocks.Delete(c.Request.Context(), id); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ------------------------------
// Owners
// ------------------------------

// POST /owners/:model
func (h *Handler) CreateOwner(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	row, err := h.owners.Create(c.Request.Context(), c.Param("model"), values)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// GET /owners/:model/:id
func (h *Handler) GetOwner(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	row, err := h.owners.Get(c.Request.Context(), c.Param("model"), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// PUT /owners/:model/:id
func (h *Handler) UpdateOwner(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var changes map[string]any
	if err := c.ShouldBindJSON(&changes); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	row, err := h.owners.Update(c.Request.Context(), c.Param("model"), id, changes)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DELETE /owners/:model/:id
func (h *Handler) DeleteOwner(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	if err := h.owners.Delete(c.Request.Context(), c.Param("model"), id); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ------------------------------
// Layouts
// ------------------------------

// GET /layouts/:model/:id
func (h *Handler) ListLayout(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.layouts.List(c.Request.Context(), c.Param("model"), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /layouts/:model/:id
func (h *Handler) AssignBlock(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	a, err := h.layouts.Assign(c.Request.Context(), c.Param("model"), id, req.BlockID)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// PUT /layouts/:model/:id/reorder
func (h *Handler) ReorderLayout(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	if err := h.layouts.Reorder(c.Request.Context(), c.Param("model"), id, req.BlockIDs); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /layouts/:model/:id/:block
func (h *Handler) UnassignBlock(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	blockID, ok := apierr.UintParam(c, "block")
	if !ok {
		return
	}
	if err := h.layouts.Unassign(c.Request.Context(), c.Param("model"), id, blockID); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ------------------------------
// Live content
// ------------------------------

// GET /content/:model/:id/:lang
func (h *Handler) GetContent(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}
	values, err := s.Get(c.Request.Context(), id, c.Param("lang"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, ContentDTO{OwnerID: id, LanguageCode: c.Param("lang"), Values: values})
}

// GET /content/:model/:id
func (h *Handler) ListLanguages(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}
	langs, err := s.Languages(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": langs})
}

// PUT /content/:model/:id/:lang
func (h *Handler) SetContent(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var req ValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	values, err := req.byBlock()
	if err != nil {
		apierr.BadRequest(c, "Invalid input", err)
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := s.SetMany(ctx, id, c.Param("lang"), values); err != nil {
		apierr.Write(c, err)
		return
	}
	out, err := s.Get(ctx, id, c.Param("lang"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, ContentDTO{OwnerID: id, LanguageCode: c.Param("lang"), Values: out})
}

// DELETE /content/:model/:id/:lang/:block
func (h *Handler) DeleteContent(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	blockID, ok := apierr.UintParam(c, "block")
	if !ok {
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}
	if err := s.DeleteBlock(c.Request.Context(), id, c.Param("lang"), blockID); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
