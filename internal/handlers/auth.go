package handlers

import (
	"encoding/json"
	"log"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hanbit-dev/authportal-backend/internal/auth"
	"github.com/hanbit-dev/authportal-backend/internal/middleware"
	"github.com/hanbit-dev/authportal-backend/internal/models"
	"github.com/hanbit-dev/authportal-backend/pkg/utils"
)

const SignupPath = "/auth/signup"

// pendingOAuthCookie holds an unlinked OAuth identity while the user
// signs in with credentials to claim it.
const pendingOAuthCookie = "pending_oauth"

type pendingOAuth struct {
	Provider          string `json:"provider"`
	ProviderAccountID string `json:"providerAccountId"`
	Email             string `json:"email,omitempty"`
	Nickname          string `json:"nickname,omitempty"`
	Image             string `json:"image,omitempty"`
}

// Register handles POST /api/auth/register.
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := bodyValues(c)
		email := auth.NormalizeEmail(body("email"))
		password := strings.TrimSpace(body("password"))
		name := strings.TrimSpace(body("name"))
		phone := auth.NormalizePhone(body("phone"))

		q := url.Values{}

		if email == "" || len(password) < 8 || len(password) > 32 || name == "" || phone == "" {
			q.Set("code", "VALIDATION_ERROR")
			if email != "" {
				q.Set("email", email)
			}
			if name != "" {
				q.Set("name", name)
			}
			redirectTo(c, SignupPath, q)
			return
		}

		var existing models.User
		if result := db.Where("email = ?", email).First(&existing); result.Error == nil {
			q.Set("code", "EMAIL_TAKEN")
			q.Set("name", name)
			redirectTo(c, SignupPath, q)
			return
		}

		user := models.User{
			Email: email,
			Name:  name,
			Phone: phone,
		}
		if err := user.SetPassword(password); err != nil {
			log.Printf("failed to hash password: %v", err)
			q.Set("code", "INTERNAL")
			redirectTo(c, SignupPath, q)
			return
		}

		if result := db.Create(&user); result.Error != nil {
			log.Printf("failed to create user: %v", result.Error)
			q.Set("code", "INTERNAL")
			redirectTo(c, SignupPath, q)
			return
		}

		q.Set("code", "SIGNUP_OK")
		redirectTo(c, middleware.LoginPath, q)
	}
}

// Login handles POST /api/auth/login: credential check, pending-OAuth
// link-up, session issue, then redirect to the stashed or submitted
// destination.
func Login(db *gorm.DB, sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := bodyValues(c)
		email := auth.NormalizeEmail(body("email"))
		password := body("password")
		redirectParam := body("redirect_to")

		q := url.Values{}

		var user models.User
		if result := db.Where("email = ?", email).First(&user); result.Error != nil || user.PasswordHash == "" {
			q.Set("code", "INVALID_CREDENTIALS")
			redirectTo(c, middleware.LoginPath, q)
			return
		}
		if err := user.CheckPassword(password); err != nil {
			q.Set("code", "INVALID_CREDENTIALS")
			redirectTo(c, middleware.LoginPath, q)
			return
		}

		linkPendingOAuth(c, db, &user)

		token, err := sessions.Issue(auth.SessionPayload{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Image: user.Image,
			Phone: user.Phone,
		})
		if err != nil {
			log.Printf("failed to issue session: %v", err)
			q.Set("code", "INTERNAL")
			redirectTo(c, middleware.LoginPath, q)
			return
		}
		sessions.SetCookie(c, token)

		dest := redirectParam
		if dest == "" {
			dest, _ = c.Cookie(middleware.ReturnToCookie)
		}
		middleware.ClearReturnTo(c, false)
		redirectTo(c, utils.SanitizeRedirect(dest, middleware.HomePath), nil)
	}
}

// Logout handles POST /api/auth/logout.
func Logout(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.ClearCookie(c)
		dest := bodyValues(c)("redirect_to")
		redirectTo(c, utils.SanitizeRedirect(dest, "/"), nil)
	}
}

// linkPendingOAuth claims the OAuth identity stashed by the callback, if
// any. A broken cookie is dropped silently; it must never block login.
func linkPendingOAuth(c *gin.Context, db *gorm.DB, user *models.User) {
	raw, err := c.Cookie(pendingOAuthCookie)
	if err != nil || raw == "" {
		return
	}

	var pending pendingOAuth
	if err := json.Unmarshal([]byte(raw), &pending); err == nil && pending.Provider != "" {
		account := models.Account{
			UserID:            user.ID,
			Type:              "oauth",
			Provider:          pending.Provider,
			ProviderAccountID: pending.ProviderAccountID,
		}
		if result := db.Create(&account); result.Error != nil {
			log.Printf("failed to link oauth account: %v", result.Error)
		} else if pending.Image != "" {
			if err := db.Model(user).Update("image", pending.Image).Error; err != nil {
				log.Printf("failed to update profile image: %v", err)
			} else {
				user.Image = pending.Image
			}
		}
	}

	c.SetCookie(pendingOAuthCookie, "", -1, "/", "", false, true)
}
