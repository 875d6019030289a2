package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"applygen-backend/internal/shared/server/middleware"
	"applygen-backend/internal/shared/server/respond"
)

type meResponse struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// registerMeRoutes attaches the /me endpoint, which echoes the caller's
// resolved identity (guest header or token claims).
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		respond.OK(c, meResponse{
			UserID:  userID,
			IsGuest: middleware.IsGuest(c),
			Email:   middleware.UserEmailFromContext(c),
			Name:    middleware.UserNameFromContext(c),
		})
	})
}
