package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientKeyMiddleware выдаёт браузеру постоянный ключ.
// По ключу уведомления и кадры находят все вкладки браузера, в том числе
// после выхода из сессии.
func ClientKeyMiddleware(cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(cookies.Client)
		if err != nil || uuid.Validate(key) != nil {
			key = uuid.NewString()
			cookies.setClient(c, key)
		}

		c.Set(ContextClientKey, key)
		c.Next()
	}
}
