package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"taskfyer/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeAndCleanInputMiddleware strips markup from top-level string fields of
// JSON bodies and stores the remaining text unescaped ("Don't", not "Don&#39;t"). Keys containing any of skipKeys (e.g. "password") are left
// untouched so that secrets are not altered.
func SanitizeAndCleanInputMiddleware(skipKeys ...string) gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			apperr.Respond(c, apperr.Validation("Invalid body"))
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body map[string]interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			apperr.Respond(c, apperr.Validation("Malformed JSON"))
			return
		}

		for k, v := range body {
			if skip(k, skipKeys) {
				continue
			}
			if str, ok := v.(string); ok {
				body[k] = html.UnescapeString(policy.Sanitize(str))
			}
		}

		newBody, _ := json.Marshal(body)
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func skip(key string, skipKeys []string) bool {
	k := strings.ToLower(key)
	for _, s := range skipKeys {
		if strings.Contains(k, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
