package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/statshare/statshare/models"
	"github.com/statshare/statshare/utils"
)

const (
	// ContextUsernameKey stores the authenticated admin username in the Gin context.
	ContextUsernameKey = "username"
	// ContextProjectIDKey stores the project ID a session token grants access to.
	ContextProjectIDKey = "project_id"
)

// AdminRequired ensures the request carries a valid admin JWT.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx)
		if !ok {
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil || claims.Type != utils.TokenTypeAdmin {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// ProjectSessionRequired ensures the request carries a valid project session
// token for the :id route parameter. The token must verify, match the project,
// and still have a live session row; expired rows are removed on sight.
func ProjectSessionRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx)
		if !ok {
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil || claims.Type != utils.TokenTypeProject || claims.ProjectID != ctx.Param("id") {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		var session models.ProjectSession
		if err := db.Where("token = ?", token).First(&session).Error; err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "session not found")
			ctx.Abort()
			return
		}
		if session.ExpiresAt.Before(time.Now()) {
			_ = db.Delete(&models.ProjectSession{}, session.ID).Error
			utils.Error(ctx, http.StatusUnauthorized, 40107, "session expired")
			ctx.Abort()
			return
		}

		ctx.Set(ContextProjectIDKey, claims.ProjectID)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
		return "", false
	}
	return token, true
}
