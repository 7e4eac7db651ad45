package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hanbit-dev/authportal-backend/internal/auth"
)

const (
	// ReturnToCookie stashes the path a signed-out visitor was heading
	// to. A cookie rather than a query value: open-redirect payloads in
	// bare URLs survive as bookmarks and history entries, cookies don't.
	ReturnToCookie = "return_to"

	LoginPath = "/auth/login"
	HomePath  = "/dashboard"
)

// Prefixes requiring a session, and the auth area a signed-in user gets
// bounced out of.
var (
	needsAuthPrefixes = []string{"/dashboard", "/example/object_storage", "/api/storage"}
	authAreaPrefixes  = []string{"/auth/login", "/auth/signup"}
)

// AccessGate classifies every request and decides redirect-to-login,
// redirect-to-app, or pass-through. A session cookie that fails
// verification is handled exactly like an absent one; the failure detail
// never reaches the client.
func AccessGate(sessions *auth.SessionManager, returnToTTL time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		protected := hasAnyPrefix(path, needsAuthPrefixes)
		authArea := hasAnyPrefix(path, authAreaPrefixes)

		var session *auth.SessionPayload
		if token, err := c.Cookie(auth.SessionCookie); err == nil && token != "" {
			payload, verr := sessions.Verify(token)
			if verr != nil {
				// Dead cookie, treat as logout.
				sessions.ClearCookie(c)
			} else {
				session = payload
			}
		}

		if session == nil && protected {
			target := path
			if raw := c.Request.URL.RawQuery; raw != "" {
				target += "?" + raw
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ReturnToCookie, target, int(returnToTTL.Seconds()), "/", "", secure, true)
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		if session != nil && authArea {
			ClearReturnTo(c, secure)
			c.Redirect(http.StatusSeeOther, HomePath)
			c.Abort()
			return
		}

		if session != nil {
			c.Set(auth.ContextUserKey, session)
		}
		c.Next()
	}
}

// SessionFromContext returns the payload the gate attached, if any.
func SessionFromContext(c *gin.Context) *auth.SessionPayload {
	if v, ok := c.Get(auth.ContextUserKey); ok {
		if payload, ok := v.(*auth.SessionPayload); ok {
			return payload
		}
	}
	return nil
}

// ClearReturnTo purges a stale stashed destination.
func ClearReturnTo(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ReturnToCookie, "", -1, "/", "", secure, true)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
