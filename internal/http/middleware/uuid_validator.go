package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// Использование: router.DELETE("/users/:id", UUIDValidator("id"), handler.DeleteUser)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			abortValidation(c, "параметр "+paramName+" обязателен")
			return
		}

		if _, err := uuid.Parse(idStr); err != nil {
			abortValidation(c, "параметр "+paramName+" должен быть валидным UUID")
			return
		}

		c.Next()
	}
}

func abortValidation(c *gin.Context, message string) {
	appErr := apperror.New(apperror.ErrCodeValidation, message)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{"error": appErr.Code, "message": message})
}
