package middleware

import (
	"context"
	"fmt"
	"strings"

	"driftchat/internal/services"
	driftchat_errors "driftchat/pkg/errors"
	"driftchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(service *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			_ = c.Error(fmt.Errorf("%w: missing bearer token", driftchat_errors.ErrUnauthorized))
			c.Abort()
			return
		}

		userID, err := service.Authenticate(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := services.WithUserContext(c.Request.Context(), userID)
		ctx = context.WithValue(ctx, logger.UserIdKey, userID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
