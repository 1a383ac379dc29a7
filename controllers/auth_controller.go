package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/repositories"
	"github.com/yatube/yatube/utils"
)

// AuthController handles signup, login and logout. Session state is a JWT
// carried in the yatube_token cookie (browsers) or a bearer header (API).
type AuthController struct {
	users repositories.UserRepository
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(users repositories.UserRepository) *AuthController {
	return &AuthController{users: users}
}

// LoginForm echoes the login form with the post-login destination.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"form": gin.H{"username": ""},
		"next": safeNext(ctx.Query("next")),
	})
}

// Signup registers a new user and logs them in.
func (a *AuthController) Signup(ctx *gin.Context) {
	form := gin.H{
		"username":   strings.TrimSpace(ctx.PostForm("username")),
		"first_name": strings.TrimSpace(ctx.PostForm("first_name")),
		"last_name":  strings.TrimSpace(ctx.PostForm("last_name")),
	}
	username := form["username"].(string)
	password1 := ctx.PostForm("password1")
	password2 := ctx.PostForm("password2")

	errs := map[string]string{}
	if username == "" {
		errs["username"] = "this field is required"
	} else if _, err := a.users.GetByUsername(username); err == nil {
		errs["username"] = "a user with that username already exists"
	}
	if len(password1) < 8 {
		errs["password1"] = "password must contain at least 8 characters"
	}
	if password1 != password2 {
		errs["password2"] = "the two password fields didn't match"
	}
	if len(errs) > 0 {
		utils.FormErrors(ctx, form, errs)
		return
	}

	hash, err := utils.HashPassword(password1)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to hash password")
		return
	}

	user := models.User{
		Username:     username,
		FirstName:    form["first_name"].(string),
		LastName:     form["last_name"].(string),
		PasswordHash: hash,
	}
	if err := a.users.Create(&user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create user")
		return
	}

	a.issueSession(ctx, &user)
	ctx.Redirect(http.StatusFound, "/")
}

// Login authenticates credentials and redirects to the next parameter.
func (a *AuthController) Login(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	password := ctx.PostForm("password")
	next := safeNext(ctx.Query("next"))
	if v := ctx.PostForm("next"); v != "" {
		next = safeNext(v)
	}

	form := gin.H{"username": username}

	user, err := a.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.FormErrors(ctx, form, map[string]string{
				"__all__": "please enter a correct username and password",
			})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load user")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		utils.FormErrors(ctx, form, map[string]string{
			"__all__": "please enter a correct username and password",
		})
		return
	}

	a.issueSession(ctx, user)
	ctx.Redirect(http.StatusFound, next)
}

// Logout clears the session cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

func (a *AuthController) issueSession(ctx *gin.Context, user *models.User) {
	cfg := config.Get()
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("failed to issue session token for %s: %v", user.Username, err)
		}
		return
	}
	ctx.SetCookie(middleware.TokenCookieName, token, int(ttl.Seconds()), "/", "", false, true)
}

// safeNext keeps the post-login redirect on this site.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
