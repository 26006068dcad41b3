package models

import "time"

// Post is an authored text entry, optionally grouped and illustrated.
//
// PubDate and AuthorID are set once at creation and never updated; the
// repository restricts updates to the mutable columns. Deleting the Group a
// post belongs to clears GroupID instead of cascading.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is the media-relative path of the attached image, e.g. "posts/ab12….jpg".
	Image string `gorm:"size:255" json:"image,omitempty"`
}
