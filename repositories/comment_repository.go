package repositories

import (
	"gorm.io/gorm"

	"github.com/yatube/yatube/models"
)

// CommentRepository provides access to comment records.
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	Delete(comment *models.Comment) error
	// ListByPost returns all comments on a post, oldest first.
	ListByPost(postID uint) ([]models.Comment, error)
}

type gormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a gorm-backed CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *gormCommentRepository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *gormCommentRepository) Delete(comment *models.Comment) error {
	return r.db.Delete(comment).Error
}

func (r *gormCommentRepository) ListByPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
