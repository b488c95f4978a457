package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Content   string    `gorm:"type:text;not null;column:content"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	AuthorID  int64     `gorm:"not null;index:comments_author_ix;column:author_id"`
	PostID    int64     `gorm:"not null;index:comments_post_ix;column:post_id"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;references:ID"`
	Post   *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
