package models

import "time"

// Post is an author-owned text entry. The group reference is optional and is
// cleared, not cascaded, when the group goes away.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Image     string    `gorm:"size:512" json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Group    *Group    `gorm:"constraint:OnDelete:SET NULL;" json:"group,omitempty"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
