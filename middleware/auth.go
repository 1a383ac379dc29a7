package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in the Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside the Gin context.
	ContextUsernameKey = "username"
	// TokenCookieName is the session cookie set at login.
	TokenCookieName = "yatube_token"
	// LoginPath is where unauthenticated callers are sent, with the original
	// URL carried in the next parameter.
	LoginPath = "/auth/login/"
)

// tokenFromRequest reads a bearer token from the Authorization header,
// falling back to the session cookie for browser traffic.
func tokenFromRequest(ctx *gin.Context) string {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := ctx.Cookie(TokenCookieName); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser resolves the caller identity when a valid token is present.
// Anonymous requests pass through untouched; handlers that tolerate both
// simply check for the context keys.
func CurrentUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := tokenFromRequest(ctx); token != "" {
			if claims, err := utils.ParseToken(token); err == nil {
				ctx.Set(ContextUserIDKey, claims.UserID)
				ctx.Set(ContextUsernameKey, claims.Username)
			}
		}
		ctx.Next()
	}
}

// LoginRequired redirects unauthenticated callers to the login entry point.
// It relies on CurrentUser having run earlier in the chain.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, exists := ctx.Get(ContextUserIDKey); !exists {
			ctx.Redirect(http.StatusFound, LoginPath+"?next="+ctx.Request.URL.RequestURI())
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
