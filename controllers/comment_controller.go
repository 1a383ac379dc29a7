package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/repositories"
	"github.com/yatube/yatube/utils"
)

// CommentController manages comments attached to posts.
type CommentController struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
) *CommentController {
	return &CommentController{posts: posts, comments: comments}
}

// AddComment attaches a comment to a post and sends the caller back to the
// post detail page.
func (c *CommentController) AddComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
		return
	}
	post, err := c.posts.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load post")
		return
	}

	text := utils.Sanitize(strings.TrimSpace(ctx.PostForm("text")))
	if text == "" {
		utils.FormErrors(ctx, gin.H{"text": ""}, map[string]string{"text": "this field is required"})
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Text:     text,
	}
	if err := c.comments.Create(&comment); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create comment")
		return
	}

	ctx.Redirect(http.StatusFound, postDetailPath(post.ID))
}

// DeleteComment removes a comment for its author (or an admin). Anyone else
// is sent to the read-only post detail view with the comment intact.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40405, "comment not found")
		return
	}
	comment, err := c.comments.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load comment")
		return
	}

	if comment.AuthorID != userID && !isAdmin(ctx) {
		ctx.Redirect(http.StatusFound, postDetailPath(comment.PostID))
		return
	}

	if err := c.comments.Delete(comment); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete comment")
		return
	}

	ctx.Redirect(http.StatusFound, postDetailPath(comment.PostID))
}
