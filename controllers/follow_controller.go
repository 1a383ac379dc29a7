package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/repositories"
	"github.com/yatube/yatube/utils"
)

// FollowController manages follow edges. Both directions are idempotent:
// refollowing an author or unfollowing a stranger is a plain redirect back to
// the profile, never an error.
type FollowController struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

// NewFollowController creates a new FollowController instance.
func NewFollowController(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
) *FollowController {
	return &FollowController{users: users, follows: follows}
}

// Follow creates a follow edge toward the named author. Following yourself
// is refused silently: no edge, same redirect.
func (f *FollowController) Follow(ctx *gin.Context) {
	callerID, author, ok := f.resolve(ctx)
	if !ok {
		return
	}

	if err := f.follows.Follow(callerID, author.ID); err != nil && !errors.Is(err, repositories.ErrSelfFollow) {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to follow")
		return
	}

	ctx.Redirect(http.StatusFound, profilePath(author.Username))
}

// Unfollow removes the follow edge toward the named author.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	callerID, author, ok := f.resolve(ctx)
	if !ok {
		return
	}

	if err := f.follows.Unfollow(callerID, author.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to unfollow")
		return
	}

	ctx.Redirect(http.StatusFound, profilePath(author.Username))
}

// resolve identifies the caller and the target author. A false return means
// an error response has been written.
func (f *FollowController) resolve(ctx *gin.Context) (uint, *models.User, bool) {
	callerID, ok := currentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return 0, nil, false
	}

	author, err := f.users.GetByUsername(ctx.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "user not found")
			return 0, nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load user")
		return 0, nil, false
	}

	return callerID, author, true
}
