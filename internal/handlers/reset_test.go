package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit-dev/authportal-backend/internal/auth"
)

type stubResetFlow struct {
	challengeID string
	resetToken  string
	err         error
	updateErr   error

	gotToken       string
	gotNewPassword string
}

func (s *stubResetFlow) RequestReset(_ context.Context, _, _, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.challengeID, nil
}

func (s *stubResetFlow) VerifyReset(_ context.Context, _, _, _, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.resetToken, nil
}

func (s *stubResetFlow) UpdatePassword(_ context.Context, resetToken, newPassword, _ string) error {
	s.gotToken = resetToken
	s.gotNewPassword = newPassword
	return s.updateErr
}

func resetCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == ResetTokenCookie {
			return cookie
		}
	}
	return nil
}

func TestResetSendUserNotFoundDispatchesNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flow := &stubResetFlow{err: &auth.FlowError{Code: auth.CodeUserNotFound}}

	r := gin.New()
	r.POST("/reset/send", ResetSend(flow))

	w := postForm(t, r, "/reset/send", url.Values{
		"email": {"hong@example.com"},
		"name":  {"홍길동"},
		"phone": {"01012345678"},
	})

	q := locationQuery(t, w)
	assert.Equal(t, "find-password", q.Get("action"))
	assert.Equal(t, auth.CodeUserNotFound, q.Get("code"))
}

func TestResetVerifySetsTokenCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flow := &stubResetFlow{resetToken: "signed-reset-token"}

	r := gin.New()
	r.POST("/reset/verify", ResetVerify(flow, 10*time.Minute, false))

	w := postForm(t, r, "/reset/verify", url.Values{
		"challengeId": {"ch-1"},
		"code":        {"123456"},
		"email":       {"hong@example.com"},
		"name":        {"홍길동"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "reset", locationQuery(t, w).Get("phase"))

	cookie := resetCookie(w.Result())
	require.NotNil(t, cookie, "reset token must travel as a cookie, not a URL parameter")
	assert.Equal(t, "signed-reset-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 10*60, cookie.MaxAge)
	assert.NotContains(t, w.Header().Get("Location"), "signed-reset-token")
}

func TestResetVerifyFailureSetsNoCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flow := &stubResetFlow{err: &auth.FlowError{Code: "TOO_MANY_TRIES"}}

	r := gin.New()
	r.POST("/reset/verify", ResetVerify(flow, 10*time.Minute, false))

	w := postForm(t, r, "/reset/verify", url.Values{
		"challengeId": {"ch-1"},
		"code":        {"123456"},
		"email":       {"hong@example.com"},
		"name":        {"홍길동"},
	})

	assert.Equal(t, "TOO_MANY_TRIES", locationQuery(t, w).Get("code"))
	assert.Nil(t, resetCookie(w.Result()))
}

func TestResetUpdateSuccessClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flow := &stubResetFlow{}

	r := gin.New()
	r.POST("/reset/update", ResetUpdate(flow, false))

	w := httptest.NewRecorder()
	form := url.Values{
		"newPassword":     {"password-123"},
		"confirmPassword": {"password-123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/reset/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: ResetTokenCookie, Value: "signed-reset-token"})
	r.ServeHTTP(w, req)

	assert.Equal(t, "RESET_OK", locationQuery(t, w).Get("code"))
	assert.Equal(t, "signed-reset-token", flow.gotToken)

	cookie := resetCookie(w.Result())
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestResetUpdateFailureStillClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flow := &stubResetFlow{updateErr: &auth.FlowError{Code: auth.CodeTokenInvalid}}

	r := gin.New()
	r.POST("/reset/update", ResetUpdate(flow, false))

	w := httptest.NewRecorder()
	form := url.Values{
		"newPassword":     {"password-123"},
		"confirmPassword": {"password-123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/reset/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: ResetTokenCookie, Value: "stale-token"})
	r.ServeHTTP(w, req)

	q := locationQuery(t, w)
	assert.Equal(t, auth.CodeTokenInvalid, q.Get("code"))
	assert.Equal(t, "reset", q.Get("phase"))

	cookie := resetCookie(w.Result())
	require.NotNil(t, cookie, "cookie must be cleared on every outcome")
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestResetUpdateMissingCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	flow := &stubResetFlow{updateErr: &auth.FlowError{Code: auth.CodeTokenInvalid}}

	r := gin.New()
	r.POST("/reset/update", ResetUpdate(flow, false))

	w := postForm(t, r, "/reset/update", url.Values{
		"newPassword":     {"password-123"},
		"confirmPassword": {"password-123"},
	})

	assert.Equal(t, auth.CodeTokenInvalid, locationQuery(t, w).Get("code"))
	assert.Empty(t, flow.gotToken)
}
