package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// clientKeyMaxAge срок жизни ключа браузера.
const clientKeyMaxAge = 365 * 24 * time.Hour

// Cookies параметры cookie консоли: токен сессии и ключ браузера.
type Cookies struct {
	Session    string
	Client     string
	Secure     bool
	SessionTTL time.Duration
}

// SetSession сохраняет токен сессии.
func (ck Cookies) SetSession(c *gin.Context, token string) {
	ck.set(c, ck.Session, token, ck.SessionTTL)
}

// ClearSession удаляет токен сессии.
func (ck Cookies) ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Session, "", -1, "/", "", ck.Secure, true)
}

func (ck Cookies) setClient(c *gin.Context, key string) {
	ck.set(c, ck.Client, key, clientKeyMaxAge)
}

func (ck Cookies) set(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", ck.Secure, true)
}
