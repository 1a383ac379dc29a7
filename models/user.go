package models

import "time"

// User represents an author identity. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	FirstName    string    `gorm:"size:64" json:"first_name,omitempty"`
	LastName     string    `gorm:"size:64" json:"last_name,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	Posts    []Post    `gorm:"foreignKey:AuthorID" json:"-"`
	Comments []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}
