package middleware

import (
	"net/http"
	"strings"

	"mvp-tweet/internal/util"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey is the gin context key holding the verified *util.Claims.
const CurrentUserKey = "currentUser"

// AuthMiddleware 校验 Bearer JWT，并在 context 里放入当前用户的 claims。
// No token yields 401; a token that fails verification yields 403.
// Verification is stateless: the user row is not looked up here.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			util.Abort(c, http.StatusUnauthorized, util.CodeAuth, "Authentication token required")
			return
		}

		claims, err := util.ParseToken(jwtSecret, issuer, tokenStr)
		if err != nil {
			util.Abort(c, http.StatusForbidden, util.CodeForbidden, "Invalid or expired token")
			return
		}

		c.Set(CurrentUserKey, claims)
		c.Next()
	}
}

// bearerToken extracts the credential from "Bearer <token>".
func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the claims stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*util.Claims, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}
