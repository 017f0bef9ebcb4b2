// Package auth issues access tokens for CMS users.
package auth

import (
	"errors"
	"net/http"
	"time"

	"blocks-cms/internal/api/apierr"
	"blocks-cms/internal/app/http/middleware"
	"blocks-cms/internal/domain/owners"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

type Handler struct {
	owners *owners.Service
}

func NewHandler(os *owners.Service) *Handler {
	return &Handler{owners: os}
}

// IssueToken signs an access token for u.
func IssueToken(u *owners.User, now time.Time) (string, error) {
	return middleware.SignToken(middleware.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
}

// POST /login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.owners.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, owners.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		apierr.Write(c, err)
		return
	}

	tokenString, err := IssueToken(user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

// POST /change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := h.owners.ChangePassword(c.Request.Context(), userID, body.OldPassword, body.NewPassword)
	if errors.Is(err, owners.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is incorrect"})
		return
	}
	if err != nil {
		apierr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// PUT /admin/users/:id/credentials
func (h *Handler) SetCredentials(c *gin.Context) {
	id, ok := apierr.UintParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := h.owners.SetCredentials(c.Request.Context(), id, body.Password, body.Role); err != nil {
		apierr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
