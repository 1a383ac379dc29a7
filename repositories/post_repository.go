package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yatube/yatube/models"
)

// PostFilter restricts a post listing. Zero value means the global feed.
type PostFilter struct {
	GroupID  *uint
	AuthorID *uint
	// FollowerID restricts to posts authored by users this user follows.
	FollowerID *uint
}

// PostRepository provides access to post records. Listings are ordered most
// recent first with id as the stable tie breaker.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	Update(post *models.Post) error
	Delete(post *models.Post) error
	Count(filter PostFilter) (int64, error)
	List(filter PostFilter, offset, limit int) ([]models.Post, error)
}

type gormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a gorm-backed PostRepository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

func (r *gormPostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *gormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update persists the post row itself; preloaded associations are left alone.
func (r *gormPostRepository) Update(post *models.Post) error {
	return r.db.Omit(clause.Associations).Save(post).Error
}

func (r *gormPostRepository) Delete(post *models.Post) error {
	return r.db.Delete(post).Error
}

func (r *gormPostRepository) Count(filter PostFilter) (int64, error) {
	var total int64
	if err := r.scope(filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *gormPostRepository) List(filter PostFilter, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.scope(filter).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *gormPostRepository) scope(filter PostFilter) *gorm.DB {
	q := r.db.Model(&models.Post{})
	if filter.GroupID != nil {
		q = q.Where("group_id = ?", *filter.GroupID)
	}
	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.FollowerID != nil {
		q = q.Where("author_id IN (?)",
			r.db.Model(&models.Follow{}).Select("author_id").Where("follower_id = ?", *filter.FollowerID),
		)
	}
	return q
}
