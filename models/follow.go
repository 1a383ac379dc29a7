package models

import "time"

// Follow is a directed edge meaning the follower sees the author's posts in
// their feed. The composite unique index closes the race between two
// concurrent follow submissions from the same user.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_follower_author" json:"follower_id"`
	AuthorID   uint      `gorm:"not null;uniqueIndex:idx_follows_follower_author" json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE;" json:"-"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;" json:"-"`
}
