package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yatube/yatube/models"
)

func TestGroupDeleteClearsPostReferences(t *testing.T) {
	db := newTestDB(t)
	repo := NewGroupRepository(db)
	leo := createUser(t, db, "leo")
	group := createGroup(t, db, "cats")
	inGroup := createPost(t, db, leo, "about cats", &group.ID)
	outside := createPost(t, db, leo, "no group", nil)

	require.NoError(t, repo.Delete(group))

	_, err := repo.GetBySlug("cats")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var orphaned models.Post
	require.NoError(t, db.First(&orphaned, inGroup.ID).Error)
	assert.Nil(t, orphaned.GroupID)

	// the unrelated post is untouched
	var other models.Post
	require.NoError(t, db.First(&other, outside.ID).Error)
	assert.Equal(t, "no group", other.Text)
}

func TestGroupListOrderedByTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewGroupRepository(db)
	require.NoError(t, repo.Create(&models.Group{Title: "Zebras", Slug: "zebras"}))
	require.NoError(t, repo.Create(&models.Group{Title: "Cats", Slug: "cats"}))

	groups, err := repo.List()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Cats", groups[0].Title)
	assert.Equal(t, "Zebras", groups[1].Title)
}

func TestGroupGetBySlugUnknown(t *testing.T) {
	db := newTestDB(t)
	repo := NewGroupRepository(db)

	_, err := repo.GetBySlug("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
