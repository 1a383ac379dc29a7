package models

// Group is a named category a post may belong to. The slug is the URL key.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Posts []Post `json:"-"`
}
