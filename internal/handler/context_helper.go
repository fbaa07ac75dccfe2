package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Sai69186/ai-time-table-generator/internal/middleware"
	"github.com/Sai69186/ai-time-table-generator/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
