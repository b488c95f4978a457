// Package objects builds the JSON representations returned by the API.
package objects

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/models"
)

// ListingBodyLength is how much of a post body listing pages carry
const ListingBodyLength = 300

// Author is the public part of a user embedded in posts and comments
type Author struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Post is a post as rendered to clients
type Post struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	BodyLength int     `json:"body_length"`
	Image      string  `json:"image,omitempty"`
	Tags       string  `json:"tags"`
	Created    string  `json:"created"`
	Author     *Author `json:"author,omitempty"`
	Likes      int64   `json:"likes"`
	URL        string  `json:"url"`
}

// Page is one page of a post listing
type Page struct {
	Posts    []*Post `json:"posts"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	HasMore  bool    `json:"has_more"`
	NextPage int     `json:"next_page,omitempty"`
	Category string  `json:"category,omitempty"`
}

// PostDetail is a post with its discussion
type PostDetail struct {
	Post      *Post      `json:"post"`
	Comments  []*Comment `json:"comments"`
	LikedByMe bool       `json:"liked_by_me"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func authorOf(u *models.User) *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.ID, Username: u.Username}
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// BuildPost renders a post. A positive truncateBody shortens the body to
// that many characters.
func BuildPost(post *models.Post, likes int64, truncateBody int) *Post {
	return &Post{
		ID:         post.ID,
		Title:      post.Title,
		Body:       truncate(post.Content, truncateBody),
		BodyLength: utf8.RuneCountInString(post.Content),
		Image:      post.Image.String,
		Tags:       post.Tags,
		Created:    formatTime(post.CreatedAt),
		Author:     authorOf(post.Author),
		Likes:      likes,
		URL:        fmt.Sprintf("/post/%d", post.ID),
	}
}

// BuildPosts renders a list of posts in order with their like counts
func BuildPosts(posts []*models.Post, likes map[int64]int64, truncateBody int) []*Post {
	result := make([]*Post, 0, len(posts))
	for _, post := range posts {
		result = append(result, BuildPost(post, likes[post.ID], truncateBody))
	}
	return result
}

// BuildPage renders a listing page with shortened bodies
func BuildPage(page *blog.Page, category string) *Page {
	out := &Page{
		Posts:    BuildPosts(page.Posts, page.LikeCounts, ListingBodyLength),
		Page:     page.Page,
		PageSize: page.PageSize,
		HasMore:  page.HasMore,
		Category: category,
	}
	if page.HasMore {
		out.NextPage = page.Page + 1
	}
	return out
}

// BuildPostDetail renders a post page
func BuildPostDetail(detail *blog.PostDetail) *PostDetail {
	return &PostDetail{
		Post:      BuildPost(detail.Post, detail.Likes, 0),
		Comments:  BuildComments(detail.Comments),
		LikedByMe: detail.LikedByMe,
	}
}
