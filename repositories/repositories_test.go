package repositories

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yatube/yatube/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createGroup(t *testing.T, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(t, db.Create(group).Error)
	return group
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, text string, groupID *uint) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Text: text, GroupID: groupID}
	require.NoError(t, db.Create(post).Error)
	return post
}
