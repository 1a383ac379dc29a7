package main

import (
	"time"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/routes"
	"github.com/yatube/yatube/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)

	var store cache.Store
	if cfg.CacheBackend == "redis" {
		store = cache.NewRedisStore(cache.NewRedisClient(cfg))
	} else {
		store = cache.NewMemoryStore()
	}
	pages := cache.NewService(store, time.Duration(cfg.IndexCacheTTLSec)*time.Second)

	r := routes.SetupRouter(db, pages)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
