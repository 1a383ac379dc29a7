package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/controllers"
	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/repositories"
	"github.com/yatube/yatube/utils"
)

// SetupRouter wires routes, middlewares, repositories and controllers.
func SetupRouter(db *gorm.DB, pages *cache.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if utils.Logger != nil {
		r.Use(utils.RequestLogger(utils.Logger))
		r.Use(utils.RecoveryWithZap(utils.Logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Identity is resolved for every request; pages that tolerate anonymous
	// callers check the context themselves.
	r.Use(middleware.CurrentUser())

	r.Static("/media", cfg.MediaDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	users := repositories.NewUserRepository(db)
	groups := repositories.NewGroupRepository(db)
	posts := repositories.NewPostRepository(db)
	comments := repositories.NewCommentRepository(db)
	follows := repositories.NewFollowRepository(db)

	feedController := controllers.NewFeedController(posts, users, groups, follows, pages, cfg.PageSize)
	postController := controllers.NewPostController(posts, groups, comments)
	commentController := controllers.NewCommentController(posts, comments)
	followController := controllers.NewFollowController(users, follows)
	groupController := controllers.NewGroupController(groups)
	authController := controllers.NewAuthController(users)

	// Public listings
	r.GET("/", feedController.Index)
	r.GET("/group/:slug/", feedController.GroupPosts)
	r.GET("/profile/:username/", feedController.Profile)
	r.GET("/posts/:id/", postController.GetPost)
	r.GET("/groups/", groupController.ListGroups)

	// Session endpoints
	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit())
	auth.GET("/login/", authController.LoginForm)
	auth.POST("/login/", authController.Login)
	auth.POST("/signup/", authController.Signup)
	auth.POST("/logout/", authController.Logout)

	// Mutations require a logged-in caller; unauthenticated requests are
	// redirected to the login entry point with a next parameter.
	protected := r.Group("")
	protected.Use(middleware.LoginRequired(), middleware.RateLimit())
	protected.GET("/follow/", feedController.FollowIndex)
	protected.GET("/create/", postController.NewPostForm)
	protected.POST("/create/", postController.CreatePost)
	protected.GET("/posts/:id/edit/", postController.EditPostForm)
	protected.POST("/posts/:id/edit/", postController.UpdatePost)
	protected.POST("/posts/:id/delete/", postController.DeletePost)
	protected.POST("/posts/:id/comment/", commentController.AddComment)
	protected.POST("/comments/:id/delete/", commentController.DeleteComment)
	protected.GET("/profile/:username/follow/", followController.Follow)
	protected.GET("/profile/:username/unfollow/", followController.Unfollow)
	protected.POST("/groups/", groupController.CreateGroup)
	protected.DELETE("/group/:slug/", groupController.DeleteGroup)

	return r
}
