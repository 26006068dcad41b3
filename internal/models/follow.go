package models

import "time"

// Follow is a directed subscription edge from UserID (the follower) to
// AuthorID (the followed). The composite unique index is the real guard
// against duplicate edges under concurrent requests; the workflow's
// existence pre-check is only an optimization.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:uk_follow_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:uk_follow_user_author" json:"author_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}
