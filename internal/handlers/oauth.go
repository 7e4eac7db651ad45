package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hanbit-dev/authportal-backend/internal/auth"
	"github.com/hanbit-dev/authportal-backend/internal/config"
	"github.com/hanbit-dev/authportal-backend/internal/middleware"
	"github.com/hanbit-dev/authportal-backend/internal/models"
	"github.com/hanbit-dev/authportal-backend/pkg/utils"
)

const (
	kauthAuthorizeURL = "https://kauth.kakao.com/oauth/authorize"
	kauthTokenURL     = "https://kauth.kakao.com/oauth/token"
	kapiMeURL         = "https://kapi.kakao.com/v2/user/me"
)

type kakaoUser struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
}

// KakaoLogin handles GET /auth/kakao/login: sends the browser to the
// provider's authorize endpoint, carrying return_to through state.
func KakaoLogin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorize, _ := url.Parse(kauthAuthorizeURL)
		q := authorize.Query()
		q.Set("response_type", "code")
		q.Set("client_id", cfg.KakaoClientID)
		q.Set("redirect_uri", cfg.KakaoRedirectURI)
		q.Set("state", c.Query("return_to"))
		authorize.RawQuery = q.Encode()

		c.Redirect(http.StatusFound, authorize.String())
	}
}

// KakaoCallback handles GET /auth/kakao/callback. A linked provider
// account gets a session straight away; an unknown one is parked in the
// pending_oauth cookie and sent to the continue page to claim or create
// a local account.
func KakaoCallback(db *gorm.DB, sessions *auth.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
			return
		}

		accessToken, err := exchangeKakaoToken(c.Request.Context(), cfg, code)
		if err != nil {
			log.Printf("kakao token exchange failed: %v", err)
			redirectTo(c, middleware.LoginPath, url.Values{"code": {"OAUTH_FAILED"}})
			return
		}

		kakao, err := fetchKakaoUser(c.Request.Context(), accessToken)
		if err != nil {
			log.Printf("kakao user fetch failed: %v", err)
			redirectTo(c, middleware.LoginPath, url.Values{"code": {"OAUTH_FAILED"}})
			return
		}

		kakaoID := fmt.Sprintf("%d", kakao.ID)

		var account models.Account
		result := db.Where("provider = ? AND provider_account_id = ?", "kakao", kakaoID).First(&account)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				log.Printf("account lookup failed: %v", result.Error)
				redirectTo(c, middleware.LoginPath, url.Values{"code": {"INTERNAL"}})
				return
			}
			stashPendingOAuth(c, cfg, kakao, kakaoID)
			redirectTo(c, "/auth/continue", nil)
			return
		}

		var user models.User
		if result := db.First(&user, account.UserID); result.Error != nil {
			// The account row exists but its user is gone; treat it
			// like an unlinked identity.
			stashPendingOAuth(c, cfg, kakao, kakaoID)
			redirectTo(c, "/auth/continue", nil)
			return
		}

		token, err := sessions.Issue(auth.SessionPayload{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Image: user.Image,
			Phone: user.Phone,
		})
		if err != nil {
			log.Printf("failed to issue session: %v", err)
			redirectTo(c, middleware.LoginPath, url.Values{"code": {"INTERNAL"}})
			return
		}
		sessions.SetCookie(c, token)

		// state carried return_to through the provider round-trip; the
		// cookie set by the gate is the fallback.
		dest := c.Query("state")
		if dest == "" {
			dest, _ = c.Cookie(middleware.ReturnToCookie)
		}
		middleware.ClearReturnTo(c, cfg.IsProduction())
		redirectTo(c, utils.SanitizeRedirect(dest, middleware.HomePath), nil)
	}
}

func stashPendingOAuth(c *gin.Context, cfg *config.Config, kakao *kakaoUser, kakaoID string) {
	nickname := kakao.Properties.Nickname
	if nickname == "" {
		nickname = kakao.KakaoAccount.Profile.Nickname
	}
	payload, _ := json.Marshal(pendingOAuth{
		Provider:          "kakao",
		ProviderAccountID: kakaoID,
		Email:             kakao.KakaoAccount.Email,
		Nickname:          nickname,
		Image:             kakao.Properties.ProfileImage,
	})

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(pendingOAuthCookie, string(payload), 10*60, "/", "", cfg.IsProduction(), true)
}

func exchangeKakaoToken(ctx context.Context, cfg *config.Config, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", cfg.KakaoClientID)
	form.Set("redirect_uri", cfg.KakaoRedirectURI)
	form.Set("code", code)
	if cfg.KakaoClientSecret != "" {
		form.Set("client_secret", cfg.KakaoClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, kauthTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed: status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access token")
	}
	return body.AccessToken, nil
}

func fetchKakaoUser(ctx context.Context, accessToken string) (*kakaoUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kapiMeURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user fetch failed: status %d", resp.StatusCode)
	}

	var user kakaoUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
