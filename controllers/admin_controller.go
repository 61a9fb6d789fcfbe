package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/statshare/statshare/config"
	"github.com/statshare/statshare/middleware"
	"github.com/statshare/statshare/utils"
)

// AdminController authenticates the single configured admin identity.
type AdminController struct{}

// NewAdminController creates a new AdminController instance.
func NewAdminController() *AdminController {
	return &AdminController{}
}

// Login verifies the admin credential and issues a 24h bearer token.
func (a *AdminController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	cfg := config.Get()
	// CheckPassword runs the full bcrypt comparison either way, keeping the
	// failure timing independent of which part was wrong.
	passwordOK := utils.CheckPassword(cfg.AdminPasswordHash, req.Password)
	if req.Username != cfg.AdminUsername || !passwordOK {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "invalid username or password")
		return
	}

	token, err := utils.GenerateAdminToken(req.Username, 24*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": token})
}

// Logout acknowledges the client discarding its token. Admin tokens are
// short-lived and stateless, so there is nothing to revoke server-side.
func (a *AdminController) Logout(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated admin identity.
func (a *AdminController) Me(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"username": ctx.GetString(middleware.ContextUsernameKey)})
}
