package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// bodyValues reads a request body submitted either as an HTML form or as
// JSON and returns a field accessor. The auth endpoints are posted by
// plain forms in the server-rendered pages and by JSON in the popup
// variants, so both must work against the same routes.
func bodyValues(c *gin.Context) func(string) string {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			return func(string) string { return "" }
		}
		return func(key string) string {
			v, ok := body[key]
			if !ok || v == nil {
				return ""
			}
			return fmt.Sprint(v)
		}
	}
	return c.PostForm
}

// redirectTo issues the 303 every form endpoint answers with.
func redirectTo(c *gin.Context, path string, params url.Values) {
	target := path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}
