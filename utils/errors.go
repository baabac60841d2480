// utils/errors.go
package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError normalizes every failure to {"error": message}
func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
