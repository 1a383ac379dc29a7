package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/repositories"
	"github.com/yatube/yatube/utils"
)

// PostController manages the post detail page and post mutations. Mutations
// are gated on ownership: anyone else lands back on the read-only detail
// view, never on an error page.
type PostController struct {
	posts    repositories.PostRepository
	groups   repositories.GroupRepository
	comments repositories.CommentRepository
}

// NewPostController creates a new PostController instance.
func NewPostController(
	posts repositories.PostRepository,
	groups repositories.GroupRepository,
	comments repositories.CommentRepository,
) *PostController {
	return &PostController{posts: posts, groups: groups, comments: comments}
}

// postForm carries the submitted (or echoed-back) post form values.
type postForm struct {
	Text  string `json:"text"`
	Group *uint  `json:"group"`
}

// GetPost returns a single post with its comments and an empty comment form.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	comments, err := p.comments.ListByPost(post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{
		"post":     post,
		"comments": comments,
		"form":     gin.H{"text": ""},
	})
}

// NewPostForm returns an empty post form plus the selectable groups.
func (p *PostController) NewPostForm(ctx *gin.Context) {
	groups, err := p.groups.List()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load groups")
		return
	}
	utils.Success(ctx, gin.H{
		"form":    postForm{},
		"groups":  groups,
		"is_edit": false,
	})
}

// CreatePost persists a validated post and sends the author to their profile.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	form, image, errs := p.bindPostForm(ctx)
	if len(errs) > 0 {
		utils.FormErrors(ctx, form, errs)
		return
	}

	post := models.Post{
		AuthorID: userID,
		Text:     form.Text,
		GroupID:  form.Group,
		Image:    image,
	}
	if err := p.posts.Create(&post); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to create post")
		return
	}

	ctx.Redirect(http.StatusFound, profilePath(currentUsername(ctx)))
}

// EditPostForm returns the filled form for the author; anyone else is sent to
// the read-only detail view.
func (p *PostController) EditPostForm(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	userID, _ := currentUserID(ctx)
	if post.AuthorID != userID {
		ctx.Redirect(http.StatusFound, postDetailPath(post.ID))
		return
	}

	groups, err := p.groups.List()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load groups")
		return
	}
	utils.Success(ctx, gin.H{
		"form":    postForm{Text: post.Text, Group: post.GroupID},
		"groups":  groups,
		"is_edit": true,
		"post":    post,
	})
}

// UpdatePost applies a validated edit. The author never changes.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	userID, _ := currentUserID(ctx)
	if post.AuthorID != userID {
		ctx.Redirect(http.StatusFound, postDetailPath(post.ID))
		return
	}

	form, image, errs := p.bindPostForm(ctx)
	if len(errs) > 0 {
		utils.FormErrors(ctx, form, errs)
		return
	}

	post.Text = form.Text
	post.GroupID = form.Group
	if image != "" {
		post.Image = image
	}
	if err := p.posts.Update(post); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update post")
		return
	}

	ctx.Redirect(http.StatusFound, postDetailPath(post.ID))
}

// DeletePost removes a post for its author (or an admin) and sends the caller
// to their profile. Anyone else lands on the detail view with the post intact.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	userID, _ := currentUserID(ctx)
	if post.AuthorID != userID && !isAdmin(ctx) {
		ctx.Redirect(http.StatusFound, postDetailPath(post.ID))
		return
	}

	if err := p.posts.Delete(post); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to delete post")
		return
	}

	ctx.Redirect(http.StatusFound, profilePath(currentUsername(ctx)))
}

// bindPostForm reads and validates the submitted form. The returned form
// echoes submitted values back so a failed submission can be re-rendered.
func (p *PostController) bindPostForm(ctx *gin.Context) (postForm, string, map[string]string) {
	errs := map[string]string{}
	form := postForm{}

	form.Text = utils.Sanitize(strings.TrimSpace(ctx.PostForm("text")))
	if form.Text == "" {
		errs["text"] = "this field is required"
	}

	if rawGroup := strings.TrimSpace(ctx.PostForm("group")); rawGroup != "" {
		id, err := strconv.ParseUint(rawGroup, 10, 32)
		if err != nil {
			errs["group"] = "select a valid group"
		} else {
			groupID := uint(id)
			if _, err := p.groups.GetByID(groupID); err != nil {
				errs["group"] = "select a valid group"
			} else {
				form.Group = &groupID
			}
		}
	}

	image := ""
	if fh, err := ctx.FormFile("image"); err == nil && fh != nil {
		cfg := config.Get()
		stored, err := utils.SaveImage(fh, cfg.MediaDir)
		if err != nil {
			if errors.Is(err, utils.ErrImageTooLarge) {
				errs["image"] = "image exceeds 10MB"
			} else {
				errs["image"] = "failed to store image"
			}
		} else {
			image = stored
		}
	}

	return form, image, errs
}

// loadPost resolves the :id path parameter. A false return means a response
// has been written already.
func (p *PostController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
		return nil, false
	}
	post, err := p.posts.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to load post")
		return nil, false
	}
	return post, true
}
