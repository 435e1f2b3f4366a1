package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// tagLike matches what a browser would parse as a tag; any other '<' is text.
var tagLike = regexp.MustCompile(`<[a-zA-Z/!?][^<>]*>`)

// SanitizeInput strips markup from the top-level string fields of JSON
// request bodies on POST and PATCH.
func SanitizeInput() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body map[string]interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed JSON"})
			return
		}

		for k, v := range body {
			if str, ok := v.(string); ok {
				// StrictPolicy escapes entities, the API stores plain text
				body[k] = html.UnescapeString(policy.Sanitize(escapeStrayLT(str)))
			}
		}

		var out bytes.Buffer
		enc := json.NewEncoder(&out)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed JSON"})
			return
		}
		newBody := bytes.TrimRight(out.Bytes(), "\n")
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

// escapeStrayLT turns every '<' that does not open a complete tag into &lt;
// so the sanitizer keeps it as text instead of swallowing the rest of the
// string ("5<y" would otherwise be read as an unterminated tag).
func escapeStrayLT(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range tagLike.FindAllStringIndex(s, -1) {
		b.WriteString(strings.ReplaceAll(s[last:loc[0]], "<", "&lt;"))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return b.String()
}
