package models

import "time"

// Like marks that a user approved a post. The (user_id, post_id) pair is
// unique at the storage layer.
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `gorm:"not null;uniqueIndex:likes_user_post_ux,priority:1;column:user_id"`
	PostID    int64     `gorm:"not null;uniqueIndex:likes_user_post_ux,priority:2;index:likes_post_ix;column:post_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID"`
	Post *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "likes"
}

// All lists every model in dependency order for schema creation
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}, &Like{}}
}
