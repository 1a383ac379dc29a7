package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/models"
)

func TestFollowRejectsSelf(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	leo := createUser(t, db, "leo")

	err := repo.Follow(leo.ID, leo.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestFollowIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	leo := createUser(t, db, "leo")
	anna := createUser(t, db, "anna")

	require.NoError(t, repo.Follow(leo.ID, anna.ID))
	require.NoError(t, repo.Follow(leo.ID, anna.ID))

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(1), count)

	following, err := repo.IsFollowing(leo.ID, anna.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestUnfollowMissingEdgeIsNoop(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	leo := createUser(t, db, "leo")
	anna := createUser(t, db, "anna")

	require.NoError(t, repo.Unfollow(leo.ID, anna.ID))

	require.NoError(t, repo.Follow(leo.ID, anna.ID))
	require.NoError(t, repo.Unfollow(leo.ID, anna.ID))
	require.NoError(t, repo.Unfollow(leo.ID, anna.ID))

	following, err := repo.IsFollowing(leo.ID, anna.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	leo := createUser(t, db, "leo")
	anna := createUser(t, db, "anna")
	mark := createUser(t, db, "mark")

	require.NoError(t, repo.Follow(leo.ID, anna.ID))
	require.NoError(t, repo.Follow(mark.ID, anna.ID))
	require.NoError(t, repo.Follow(leo.ID, mark.ID))

	followers, err := repo.CountFollowers(anna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)

	following, err := repo.CountFollowing(leo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), following)
}
