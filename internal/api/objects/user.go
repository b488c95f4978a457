package objects

import (
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/models"
)

// User is an account as rendered to clients. The password hash never leaves
// the server.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	IsAdmin      bool   `json:"is_admin"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Created      string `json:"created"`
}

// Comment is a comment as rendered to clients
type Comment struct {
	ID        int64   `json:"id"`
	PostID    int64   `json:"post_id"`
	PostTitle string  `json:"post_title,omitempty"`
	Content   string  `json:"content"`
	Created   string  `json:"created"`
	Author    *Author `json:"author,omitempty"`
}

// Profile is a user page
type Profile struct {
	User     *User      `json:"user"`
	Posts    []*Post    `json:"posts"`
	Comments []*Comment `json:"comments"`
}

// Dashboard is the admin overview
type Dashboard struct {
	Users []*User `json:"users"`
	Posts []*Post `json:"posts"`
}

// BuildUser renders a user
func BuildUser(u *models.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		IsAdmin:      u.IsAdmin,
		Bio:          u.Bio.String,
		ProfileImage: u.ProfileImage.String,
		Created:      formatTime(u.CreatedAt),
	}
}

// BuildComment renders a comment
func BuildComment(c *models.Comment) *Comment {
	out := &Comment{
		ID:      c.ID,
		PostID:  c.PostID,
		Content: c.Content,
		Created: formatTime(c.CreatedAt),
		Author:  authorOf(c.Author),
	}
	if c.Post != nil {
		out.PostTitle = c.Post.Title
	}
	return out
}

// BuildComments renders comments in order
func BuildComments(comments []*models.Comment) []*Comment {
	result := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		result = append(result, BuildComment(c))
	}
	return result
}

// BuildProfile renders a profile page
func BuildProfile(p *blog.Profile) *Profile {
	return &Profile{
		User:     BuildUser(p.User),
		Posts:    BuildPosts(p.Posts, nil, ListingBodyLength),
		Comments: BuildComments(p.Comments),
	}
}

// BuildDashboard renders the admin overview
func BuildDashboard(d *blog.Dashboard) *Dashboard {
	users := make([]*User, 0, len(d.Users))
	for _, u := range d.Users {
		users = append(users, BuildUser(u))
	}
	return &Dashboard{
		Users: users,
		Posts: BuildPosts(d.Posts, nil, ListingBodyLength),
	}
}
