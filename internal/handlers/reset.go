package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hanbit-dev/authportal-backend/internal/auth"
	"github.com/hanbit-dev/authportal-backend/internal/middleware"
)

// ResetTokenCookie carries the minted reset token between verify and
// update. HTTP-only cookie instead of a URL parameter so the token never
// lands in logs or referrers.
const ResetTokenCookie = "pw_reset_token"

// ResetFlow is the password-reset service surface these handlers drive.
type ResetFlow interface {
	RequestReset(ctx context.Context, email, name, phone string) (string, error)
	VerifyReset(ctx context.Context, challengeID, code, email, name string) (string, error)
	UpdatePassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error
}

// ResetSend handles POST /reset/send: (email, name, phone) in, challenge
// out.
func ResetSend(flow ResetFlow) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := bodyValues(c)
		email := auth.NormalizeEmail(body("email"))
		name := strings.TrimSpace(body("name"))
		phone := auth.NormalizePhone(body("phone"))

		q := url.Values{}
		q.Set("action", "find-password")

		challengeID, err := flow.RequestReset(c.Request.Context(), email, name, phone)
		if err != nil {
			q.Set("phase", "form")
			q.Set("code", errorCode(err))
			if email != "" {
				q.Set("email", email)
			}
			if name != "" {
				q.Set("name", name)
			}
			redirectTo(c, middleware.LoginPath, q)
			return
		}

		q.Set("phase", "verify")
		q.Set("email", email)
		q.Set("name", name)
		q.Set("challenge", challengeID)
		redirectTo(c, middleware.LoginPath, q)
	}
}

// ResetVerify handles POST /reset/verify: on success the reset token is
// set as an HTTP-only cookie and the client moves to the new-password
// phase.
func ResetVerify(flow ResetFlow, tokenTTL time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := bodyValues(c)
		challengeID := body("challengeId")
		code := strings.TrimSpace(body("code"))
		email := auth.NormalizeEmail(body("email"))
		name := strings.TrimSpace(body("name"))

		q := url.Values{}
		q.Set("action", "find-password")

		resetToken, err := flow.VerifyReset(c.Request.Context(), challengeID, code, email, name)
		if err != nil {
			q.Set("phase", "verify")
			q.Set("code", errorCode(err))
			q.Set("challenge", challengeID)
			q.Set("email", email)
			q.Set("name", name)
			redirectTo(c, middleware.LoginPath, q)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ResetTokenCookie, resetToken, int(tokenTTL.Seconds()), "/", "", secure, true)

		q.Set("phase", "reset")
		redirectTo(c, middleware.LoginPath, q)
	}
}

// ResetUpdate handles POST /reset/update. The carrying cookie is cleared
// on every outcome; only the token decides whether the mutation runs.
func ResetUpdate(flow ResetFlow, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := bodyValues(c)
		newPassword := body("newPassword")
		confirmPassword := body("confirmPassword")

		resetToken, _ := c.Cookie(ResetTokenCookie)

		err := flow.UpdatePassword(c.Request.Context(), resetToken, newPassword, confirmPassword)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ResetTokenCookie, "", -1, "/", "", secure, true)

		q := url.Values{}
		if err != nil {
			q.Set("action", "find-password")
			q.Set("phase", "reset")
			q.Set("code", errorCode(err))
			redirectTo(c, middleware.LoginPath, q)
			return
		}

		q.Set("code", "RESET_OK")
		redirectTo(c, middleware.LoginPath, q)
	}
}
