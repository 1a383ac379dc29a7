package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/repositories"
	"github.com/yatube/yatube/utils"
)

// FeedController serves the paginated post listings: global index, by group,
// by author and by followed authors.
type FeedController struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	groups   repositories.GroupRepository
	follows  repositories.FollowRepository
	pages    *cache.Service
	pageSize int
}

// NewFeedController wires the feed listings to their repositories and the
// injected page cache.
func NewFeedController(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	groups repositories.GroupRepository,
	follows repositories.FollowRepository,
	pages *cache.Service,
	pageSize int,
) *FeedController {
	return &FeedController{
		posts:    posts,
		users:    users,
		groups:   groups,
		follows:  follows,
		pages:    pages,
		pageSize: pageSize,
	}
}

// Index returns the global feed. The rendered body is cached by request URI
// for a bounded window; within that window the response is replayed
// byte-for-byte even if posts changed underneath.
func (f *FeedController) Index(ctx *gin.Context) {
	key := ctx.Request.URL.RequestURI()
	if body, ok := f.pages.Get(key); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	payload, ok := f.listPayload(ctx, repositories.PostFilter{})
	if !ok {
		return
	}

	body, err := json.Marshal(utils.JSONResponse{Code: 0, Message: "success", Data: payload})
	if err != nil {
		utils.Success(ctx, payload)
		return
	}
	f.pages.Set(key, body)
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GroupPosts returns the feed of a single group resolved by slug.
func (f *FeedController) GroupPosts(ctx *gin.Context) {
	group, err := f.groups.GetBySlug(ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to load group")
		return
	}

	payload, ok := f.listPayload(ctx, repositories.PostFilter{GroupID: &group.ID})
	if !ok {
		return
	}
	payload["group"] = group
	utils.Success(ctx, payload)
}

// Profile returns an author's feed plus follow status for the caller.
func (f *FeedController) Profile(ctx *gin.Context) {
	profile, err := f.users.GetByUsername(ctx.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to load user")
		return
	}

	payload, ok := f.listPayload(ctx, repositories.PostFilter{AuthorID: &profile.ID})
	if !ok {
		return
	}

	following := false
	if callerID, authed := currentUserID(ctx); authed {
		if ok, err := f.follows.IsFollowing(callerID, profile.ID); err == nil {
			following = ok
		}
	}
	followers, _ := f.follows.CountFollowers(profile.ID)
	followees, _ := f.follows.CountFollowing(profile.ID)

	payload["profile"] = profile
	payload["following"] = following
	payload["followers_count"] = followers
	payload["following_count"] = followees
	utils.Success(ctx, payload)
}

// FollowIndex returns the feed restricted to authors the caller follows.
// Following nobody yields an empty page, not an error.
func (f *FeedController) FollowIndex(ctx *gin.Context) {
	callerID, ok := currentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	payload, ok := f.listPayload(ctx, repositories.PostFilter{FollowerID: &callerID})
	if !ok {
		return
	}
	utils.Success(ctx, payload)
}

// listPayload runs the count + clamp + fetch sequence shared by every
// listing. A false return means an error response has been written.
func (f *FeedController) listPayload(ctx *gin.Context, filter repositories.PostFilter) (gin.H, bool) {
	total, err := f.posts.Count(filter)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to count posts")
		return nil, false
	}

	pg := utils.Paginate(ctx.Query("page"), total, f.pageSize)
	items, err := f.posts.List(filter, pg.Offset, pg.PageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to list posts")
		return nil, false
	}

	return gin.H{"items": items, "pagination": pg}, true
}
