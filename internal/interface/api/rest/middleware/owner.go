package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"json-share-api/internal/application/apperr"
	"json-share-api/internal/interface/api/rest/response"
)

const (
	HeaderUserID = "X-User-ID"
	CtxOwnerID   = "ownerID"
)

// RequireOwner rejects requests without an X-User-ID header. The value is
// an opaque client-generated identifier and is not verified.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if owner == "" {
			response.Fail(c, apperr.Unauthorized("user ID is required"), false)
			return
		}

		c.Set(CtxOwnerID, owner)

		c.Next()
	}
}

func OwnerID(c *gin.Context) string { return c.GetString(CtxOwnerID) }
