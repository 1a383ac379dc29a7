package repositories

import (
	"gorm.io/gorm"

	"github.com/yatube/yatube/models"
)

// GroupRepository provides access to group records.
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id uint) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]models.Group, error)
	// Delete removes the group and clears group_id on every referencing post
	// in the same transaction. Posts themselves are never deleted.
	Delete(group *models.Group) error
}

type gormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a gorm-backed GroupRepository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &gormGroupRepository{db: db}
}

func (r *gormGroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *gormGroupRepository) GetByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *gormGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *gormGroupRepository) List() ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.Order("title ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *gormGroupRepository) Delete(group *models.Group) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", group.ID).Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
}
