package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yatube/yatube/models"
)

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("users cannot follow themselves")

// FollowRepository manages follow edges. Follow and Unfollow are idempotent:
// repeating either has no effect beyond the first application.
type FollowRepository interface {
	Follow(followerID, authorID uint) error
	Unfollow(followerID, authorID uint) error
	IsFollowing(followerID, authorID uint) (bool, error)
	CountFollowers(authorID uint) (int64, error)
	CountFollowing(followerID uint) (int64, error)
}

type gormFollowRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a gorm-backed FollowRepository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &gormFollowRepository{db: db}
}

// Follow inserts the edge with ON CONFLICT DO NOTHING so the unique index on
// (follower_id, author_id) resolves concurrent duplicate submissions without
// an application-level check-then-act.
func (r *gormFollowRepository) Follow(followerID, authorID uint) error {
	if followerID == authorID {
		return ErrSelfFollow
	}
	follow := models.Follow{FollowerID: followerID, AuthorID: authorID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
}

func (r *gormFollowRepository) Unfollow(followerID, authorID uint) error {
	return r.db.
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{}).Error
}

func (r *gormFollowRepository) IsFollowing(followerID, authorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormFollowRepository) CountFollowers(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *gormFollowRepository) CountFollowing(followerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", followerID).Count(&count).Error
	return count, err
}
