package handlers

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hanbit-dev/authportal-backend/internal/auth"
	"github.com/hanbit-dev/authportal-backend/internal/middleware"
)

// RecoveryFlow is the identity-recovery service surface these handlers
// drive.
type RecoveryFlow interface {
	RequestRecovery(ctx context.Context, name, phone string) (string, error)
	VerifyRecovery(ctx context.Context, challengeID, code, name string) ([]string, error)
}

// errorCode flattens a flow failure into the machine-readable code the
// redirect carries. Downstream faults become a generic INTERNAL; the
// detail goes to the log, never to the client.
func errorCode(err error) string {
	var flowErr *auth.FlowError
	if errors.As(err, &flowErr) {
		return flowErr.Code
	}
	log.Printf("auth flow error: %v", err)
	return "INTERNAL"
}

// RecoverySend handles POST /recovery/send: (name, phone) in, challenge
// out, code dispatched over SMS.
func RecoverySend(flow RecoveryFlow) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := bodyValues(c)
		name := strings.TrimSpace(body("name"))
		phone := auth.NormalizePhone(body("phone"))

		q := url.Values{}
		q.Set("action", "find-email")

		challengeID, err := flow.RequestRecovery(c.Request.Context(), name, phone)
		if err != nil {
			q.Set("phase", "form")
			q.Set("code", errorCode(err))
			if name != "" {
				q.Set("name", name)
			}
			if phone != "" {
				q.Set("phone", phone)
			}
			redirectTo(c, middleware.LoginPath, q)
			return
		}

		q.Set("phase", "verify")
		q.Set("name", name)
		q.Set("phone", phone)
		q.Set("challenge", challengeID)
		redirectTo(c, middleware.LoginPath, q)
	}
}

// RecoveryVerify handles POST /recovery/verify: code in, masked
// identifiers out.
func RecoveryVerify(flow RecoveryFlow) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := bodyValues(c)
		challengeID := body("challengeId")
		code := strings.TrimSpace(body("code"))
		name := strings.TrimSpace(body("name"))

		q := url.Values{}
		q.Set("action", "find-email")

		emails, err := flow.VerifyRecovery(c.Request.Context(), challengeID, code, name)
		if err != nil {
			q.Set("phase", "verify")
			q.Set("code", errorCode(err))
			q.Set("challenge", challengeID)
			q.Set("name", name)
			redirectTo(c, middleware.LoginPath, q)
			return
		}

		q.Set("phase", "done")
		q.Set("emails", strings.Join(emails, "|"))
		redirectTo(c, middleware.LoginPath, q)
	}
}
