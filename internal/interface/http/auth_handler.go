package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dermalens/skin-advisor/internal/domain/stats"
	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

type loginPayload struct {
	Password string `json:"password"`
}

// Login exchanges the shared password for an HttpOnly session cookie.
// The token never appears in the response body.
func (h *Handler) Login(c *gin.Context) {
	var req loginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "password is required", err))
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Password, c.ClientIP())
	if err != nil {
		h.recordLogin(c, stats.StatusError, apperrors.CodeOf(err, "unauthenticated"))
		abortWithError(c, httpErrorFrom(err, "unauthenticated"))
		return
	}

	h.setSessionCookie(c, result.Token, int(h.authCfg.TokenTTL.Seconds()))
	h.recordLogin(c, stats.StatusSuccess, "")
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"role":      result.Role,
		"expiresAt": result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout clears the session cookie. It succeeds whether or not a
// session existed.
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, token, maxAge, "/", "", h.secureCookies, true)
}

func (h *Handler) recordLogin(c *gin.Context, status, detail string) {
	h.statsSvc.Record(c.Request.Context(), stats.Entry{
		Action:      stats.ActionLogin,
		Status:      status,
		ErrorDetail: detail,
		IP:          c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	})
}
