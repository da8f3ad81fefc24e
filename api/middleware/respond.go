package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/serpscout/models"
)

// abort stops the chain with a failed SearchResponse.
func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, models.SearchResponse{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: msg},
	})
}
