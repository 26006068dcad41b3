package models

import "time"

// Comment is a text reply attached to a post. Comments are never edited or
// deleted by this core; deleting the post cascades to its comments.
//
// Text may be blank: the legacy form contract allows it even though the
// presentation layer expects content.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text" json:"text"`
	Created  time.Time `gorm:"autoCreateTime;index" json:"created"`
	PostID   uint      `gorm:"not null;index" json:"post_id"`
	Post     Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
}
