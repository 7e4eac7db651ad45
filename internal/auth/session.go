package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookie = "session"

	// ContextUserKey is where the access gate stashes the verified
	// session payload for downstream handlers.
	ContextUserKey = "sessionUser"
)

// SessionPayload is what a session credential carries. Everything beyond
// id and email is optional profile sugar.
type SessionPayload struct {
	ID    uint
	Email string
	Name  string
	Image string
	Phone string
}

// SessionManager signs and verifies the compact session credential and
// owns its cookie transport. Verification is pure computation; it never
// touches the network or the database.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Issue signs an HS256 token over the payload with the configured expiry.
func (m *SessionManager) Issue(payload SessionPayload) (string, error) {
	claims := jwt.MapClaims{
		"id":    payload.ID,
		"email": payload.Email,
		"exp":   m.now().Add(m.ttl).Unix(),
	}
	if payload.Name != "" {
		claims["name"] = payload.Name
	}
	if payload.Image != "" {
		claims["image"] = payload.Image
	}
	if payload.Phone != "" {
		claims["phone"] = payload.Phone
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and checks a session token. Every failure mode, whether
// structural, cryptographic, or expiry, comes back as a plain error;
// callers treat them all as "not authenticated".
func (m *SessionManager) Verify(tokenString string) (*SessionPayload, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session claims")
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return nil, errors.New("invalid session claims")
	}
	email, _ := claims["email"].(string)

	payload := &SessionPayload{ID: uint(id), Email: email}
	if name, ok := claims["name"].(string); ok {
		payload.Name = name
	}
	if image, ok := claims["image"].(string); ok {
		payload.Image = image
	}
	if phone, ok := claims["phone"].(string); ok {
		payload.Phone = phone
	}
	return payload, nil
}

// SetCookie installs the session cookie: HTTP-only, SameSite Lax, Secure
// in production.
func (m *SessionManager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

// ReadCookie returns the verified session from the request, or nil when
// the cookie is absent or fails verification for any reason.
func (m *SessionManager) ReadCookie(c *gin.Context) *SessionPayload {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		return nil
	}
	payload, err := m.Verify(token)
	if err != nil {
		return nil
	}
	return payload
}

// ClearCookie removes the session cookie.
func (m *SessionManager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secure, true)
}
