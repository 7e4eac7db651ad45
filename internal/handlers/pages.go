package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanbit-dev/authportal-backend/internal/middleware"
)

// Page handlers are deliberately bare: the portal's rendering lives in
// the frontend, these just give the gate real routes and let the flows
// be exercised end to end with curl or a browser.

func HomePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Account Portal</h1>"))
	}
}

func LoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := fmt.Sprintf(
			"<h1>Login</h1><p>action=%s phase=%s code=%s</p>",
			c.Query("action"), c.Query("phase"), c.Query("code"),
		)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}

func ContinuePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Continue sign-in</h1>"))
	}
}

func DashboardPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.SessionFromContext(c)
		if user == nil {
			// Only reachable if the route is wired without the gate.
			c.Redirect(http.StatusSeeOther, middleware.LoginPath)
			return
		}
		page := fmt.Sprintf("<h1>Dashboard</h1><p>%s</p>", user.Email)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}

func StorageBrowserPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Object Storage</h1>"))
	}
}
