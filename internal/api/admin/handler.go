// Package admin serves installation overview data.
package admin

import (
	"net/http"

	"blocks-cms/internal/api/apierr"
	"blocks-cms/internal/domain/registry"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminStats struct {
	Models      int              `json:"models"`
	BlockModels int              `json:"block_models"`
	Rows        map[string]int64 `json:"rows"`
}

type Handler struct {
	db  *gorm.DB
	reg *registry.Registry
}

func NewHandler(db *gorm.DB, reg *registry.Registry) *Handler {
	return &Handler{db: db, reg: reg}
}

// GET /admin/stats
func (h *Handler) GetAdminStats(c *gin.Context) {
	stats := AdminStats{Rows: map[string]int64{}}

	tables := []string{"blocks"}
	for _, m := range h.reg.Models() {
		stats.Models++
		if m.IsBlock {
			stats.BlockModels++
		}
		if m.HasContent {
			tables = append(tables, m.TableName, m.ContentTable)
		}
	}
	tables = append(tables, "drafts", "entryversions", "languages")

	db := h.db.WithContext(c.Request.Context())
	for _, t := range tables {
		var n int64
		if err := db.Table(t).Count(&n).Error; err != nil {
			apierr.Write(c, err)
			return
		}
		stats.Rows[t] = n
	}

	c.JSON(http.StatusOK, stats)
}
