package models

import (
	"database/sql"
	"time"
)

// User represents a registered account
type User struct {
	ID           int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string         `gorm:"type:varchar(150);not null;uniqueIndex:users_username_ux;column:username"`
	PasswordHash string         `gorm:"type:varchar(200);not null;column:password_hash"`
	IsAdmin      bool           `gorm:"not null;default:false;column:is_admin"`
	Bio          sql.NullString `gorm:"type:text;column:bio"`
	ProfileImage sql.NullString `gorm:"type:varchar(255);column:profile_image"`
	CreatedAt    time.Time      `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
