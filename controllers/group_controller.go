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

// GroupController manages the group directory. Creating and deleting groups
// is administrative; deletion clears the group reference on posts instead of
// cascading.
type GroupController struct {
	groups repositories.GroupRepository
}

// NewGroupController creates a new GroupController instance.
func NewGroupController(groups repositories.GroupRepository) *GroupController {
	return &GroupController{groups: groups}
}

// ListGroups returns the group directory.
func (g *GroupController) ListGroups(ctx *gin.Context) {
	groups, err := g.groups.List()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

// CreateGroup registers a new group. Admin only.
func (g *GroupController) CreateGroup(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin access required")
		return
	}

	form := gin.H{
		"title":       strings.TrimSpace(ctx.PostForm("title")),
		"slug":        strings.TrimSpace(ctx.PostForm("slug")),
		"description": strings.TrimSpace(ctx.PostForm("description")),
	}

	errs := map[string]string{}
	title := form["title"].(string)
	slug := form["slug"].(string)
	if title == "" {
		errs["title"] = "this field is required"
	}
	if slug == "" {
		errs["slug"] = "this field is required"
	} else if _, err := g.groups.GetBySlug(slug); err == nil {
		errs["slug"] = "group with this slug already exists"
	}
	if len(errs) > 0 {
		utils.FormErrors(ctx, form, errs)
		return
	}

	group := models.Group{
		Title:       title,
		Slug:        slug,
		Description: form["description"].(string),
	}
	if err := g.groups.Create(&group); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create group")
		return
	}

	utils.Success(ctx, gin.H{"group": group})
}

// DeleteGroup removes a group and nullifies the group reference on its posts.
// Admin only; the posts survive.
func (g *GroupController) DeleteGroup(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40302, "admin access required")
		return
	}

	group, err := g.groups.GetBySlug(ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40407, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load group")
		return
	}

	if err := g.groups.Delete(group); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to delete group")
		return
	}

	utils.Success(ctx, gin.H{"message": "group deleted"})
}
