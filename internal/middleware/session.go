package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"patient-dashboard/internal/dashboard"
	"patient-dashboard/internal/session"
)

const (
	sessionIDKey = "sessionID"
	dashboardKey = "dashboard"
)

// Session attaches the caller's dashboard to the context, issuing a session cookie when
// the request has none or an expired one.
func Session(store *session.Store, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(session.CookieName)
		id, d, created := store.GetOrCreate(cookie)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, id, 0, "/", "", secureCookie, true)
		}

		c.Set(sessionIDKey, id)
		c.Set(dashboardKey, d)
		c.Next()
	}
}

// Helper function to get the session's dashboard from context
func GetDashboardFromContext(c *gin.Context) (*dashboard.Dashboard, bool) {
	v, exists := c.Get(dashboardKey)
	if !exists {
		return nil, false
	}
	d, ok := v.(*dashboard.Dashboard)
	return d, ok
}

// Helper function to get the session id from context
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(sessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
