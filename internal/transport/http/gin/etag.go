package httpgin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// writeJSONWithETag writes a JSON response with an ETag and returns 304
// when If-None-Match matches. Catalog responses use Cache-Control no-cache:
// clients may revalidate cheaply but must never serve a count the store has
// already moved past.
func writeJSONWithETag(c *gin.Context, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	sum := sha256.Sum256(b)
	tag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	inm := c.GetHeader("If-None-Match")
	c.Header("ETag", tag)
	c.Header("Cache-Control", "no-cache")
	if inm == tag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}
