package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Все ошибки запроса пишутся в лог; если обработчик сам не ответил,
// клиент получает код ошибки без внутренних подробностей.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := apperror.As(c.Errors.Last().Err)

		entry := logger.Entry("http").WithFields(logrus.Fields{
			"error":  c.Errors.String(),
			"code":   last.Code,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		if last.HTTPStatus >= http.StatusInternalServerError {
			entry.Error("ошибка обработки запроса")
		} else {
			entry.Warn("запрос отклонён")
		}

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		message := last.Message
		if last.HTTPStatus >= http.StatusInternalServerError {
			message = "внутренняя ошибка сервера"
		}
		c.JSON(last.HTTPStatus, gin.H{"error": last.Code, "message": message})
	}
}
