package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/dermalens/skin-advisor/internal/domain/auth"
)

// requireAuth gates the API surface. API callers are programs, so a
// missing or invalid session gets a JSON 401, never a redirect.
func requireAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(authCookieName)
		if err != nil || token == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthenticated", "login required", nil))
			return
		}
		claims, err := svc.ValidateToken(token)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthenticated", "invalid or expired session", err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// adminGate protects the admin dashboard. It is browser-facing, so
// failures redirect to the login page instead of returning JSON. A
// valid session without the admin role redirects with a reason so the
// page can explain the denial.
func adminGate(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(authCookieName)
		if err != nil || token == "" {
			redirectToLogin(c, "")
			return
		}
		claims, err := svc.ValidateToken(token)
		if err != nil {
			redirectToLogin(c, "")
			return
		}
		if claims.Role != auth.RoleAdmin {
			redirectToLogin(c, "admin_required")
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func redirectToLogin(c *gin.Context, reason string) {
	target := "/login"
	if reason != "" {
		target += "?reason=" + url.QueryEscape(reason)
	}
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
