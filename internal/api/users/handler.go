// Package users serves the signed-in user's own view.
package users

import (
	"net/http"

	"blocks-cms/internal/api/apierr"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/owners"
	"blocks-cms/internal/domain/usergroups"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	owners *owners.Service
	groups *usergroups.Service
}

func NewHandler(os *owners.Service, gs *usergroups.Service) *Handler {
	return &Handler{owners: os, groups: gs}
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	ctx := c.Request.Context()

	row, err := h.owners.Get(ctx, catalog.User, userID)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	user := row.(*owners.User)

	groups, err := h.groups.Groups(ctx, userID)
	if err != nil {
		apierr.Write(c, err)
		return
	}

	// highest grant per permission across groups
	perms := map[string]int64{}
	for _, g := range groups {
		list, err := h.groups.Permissions(ctx, g)
		if err != nil {
			apierr.Write(c, err)
			return
		}
		for _, p := range list {
			if cur, ok := perms[p.Name]; !ok || p.Value > cur {
				perms[p.Name] = p.Value
			}
		}
	}
	if groups == nil {
		groups = []uint{}
	}

	c.JSON(http.StatusOK, MeResponse{
		User: UserDTO{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
		Groups:      groups,
		Permissions: perms,
	})
}
