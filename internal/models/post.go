package models

import (
	"database/sql"
	"time"
)

// Post represents a blog post. Tags is a free-text string; category
// membership is a substring match against it.
type Post struct {
	ID        int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Title     string         `gorm:"type:varchar(200);not null;column:title"`
	Content   string         `gorm:"type:text;not null;column:content"`
	Image     sql.NullString `gorm:"type:varchar(255);column:image"`
	Tags      string         `gorm:"type:varchar(200);not null;default:'';column:tags"`
	CreatedAt time.Time      `gorm:"not null;column:created_at"`
	AuthorID  int64          `gorm:"not null;index:posts_author_ix;column:author_id"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
