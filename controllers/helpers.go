package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/middleware"
)

func currentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func currentUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	username, _ := value.(string)
	return username
}

func isAdmin(ctx *gin.Context) bool {
	username := currentUsername(ctx)
	if username == "" {
		return false
	}
	cfg := config.Get()
	for _, u := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), username) {
			return true
		}
	}
	return false
}

// parseID reads a numeric path parameter. Zero and garbage both resolve to
// not-ok; callers answer 404 since such a record cannot exist.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func profilePath(username string) string {
	return "/profile/" + username + "/"
}

func postDetailPath(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}
