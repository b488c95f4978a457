package blog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/internal/models"
	"github.com/inkwell/inkwell/pkg/telemetry"
)

const (
	maxTitleLen = 200
	maxTagsLen  = 200
	maxImageLen = 255
)

// PostInput carries the writable fields of a post
type PostInput struct {
	Title   string
	Content string
	Image   string
	Tags    string
}

func (in PostInput) normalize() (PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Tags = strings.TrimSpace(in.Tags)
	in.Image = strings.TrimSpace(in.Image)
	switch {
	case in.Title == "":
		return in, fmt.Errorf("%w: title is required", ErrValidation)
	case utf8.RuneCountInString(in.Title) > maxTitleLen:
		return in, fmt.Errorf("%w: title is longer than %d characters", ErrValidation, maxTitleLen)
	case strings.TrimSpace(in.Content) == "":
		return in, fmt.Errorf("%w: content is required", ErrValidation)
	case utf8.RuneCountInString(in.Tags) > maxTagsLen:
		return in, fmt.Errorf("%w: tags are longer than %d characters", ErrValidation, maxTagsLen)
	case utf8.RuneCountInString(in.Image) > maxImageLen:
		return in, fmt.Errorf("%w: image path is longer than %d characters", ErrValidation, maxImageLen)
	}
	return in, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// TagsWithCategory prefixes free-form tags with the category a post is
// written under, so the post shows up in that category's listing.
func TagsWithCategory(category, tags string) string {
	category = strings.TrimSpace(category)
	tags = strings.TrimSpace(tags)
	switch {
	case category == "":
		return tags
	case tags == "":
		return category
	default:
		return category + "," + tags
	}
}

// Page is one page of a post listing, newest first
type Page struct {
	Posts      []*models.Post
	LikeCounts map[int64]int64
	Page       int
	PageSize   int
	HasMore    bool
}

// PostDetail is a post with its discussion
type PostDetail struct {
	Post      *models.Post
	Comments  []*models.Comment
	Likes     int64
	LikedByMe bool
}

// CreatePost publishes a post authored by the principal
func (s *Service) CreatePost(ctx context.Context, p *Principal, in PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.CreatePost")
	defer span.End()

	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		Image:     nullString(in.Image),
		Tags:      in.Tags,
		CreatedAt: s.opts.Now(),
		AuthorID:  p.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.Author = &models.User{ID: p.ID, Username: p.Username, IsAdmin: p.IsAdmin}

	s.opts.Counters.PostCreated(ctx)
	s.logger.Info("Post created", zap.Int64("post_id", post.ID), zap.Int64("author_id", p.ID))
	return post, nil
}

// EditPost replaces the writable fields of a post. Only the author may edit.
func (s *Service) EditPost(ctx context.Context, p *Principal, id int64, in PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.EditPost")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", id))

	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(p, post.AuthorID) {
		return nil, fmt.Errorf("%w: only the author can edit this post", ErrForbidden)
	}
	in, err = in.normalize()
	if err != nil {
		return nil, err
	}

	image := nullString(in.Image)
	if err := s.posts.UpdateContent(ctx, id, in.Title, in.Content, image, in.Tags); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	post.Title, post.Content, post.Image, post.Tags = in.Title, in.Content, image, in.Tags
	return post, nil
}

// DeletePost removes a post together with its comments and likes. The
// author or an admin may delete.
func (s *Service) DeletePost(ctx context.Context, p *Principal, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "blog.DeletePost")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", id))

	if err := requirePrincipal(p); err != nil {
		return err
	}
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return err
	}
	if !canDelete(p, post.AuthorID) {
		return fmt.Errorf("%w: only the author or an admin can delete this post", ErrForbidden)
	}

	deleted, err := s.posts.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if !deleted {
		// lost a race with another delete
		return fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	s.logger.Info("Post deleted",
		zap.Int64("post_id", id),
		zap.Int64("by", p.ID),
		zap.Bool("as_admin", p.ID != post.AuthorID))
	return nil
}

// GetPost loads a post with its comments and like count. The principal may
// be nil; when present LikedByMe reports whether they liked the post.
func (s *Service) GetPost(ctx context.Context, p *Principal, id int64) (*PostDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.GetPost")
	defer span.End()

	post, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	likes, err := s.likes.CountByPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	detail := &PostDetail{Post: post, Comments: comments, Likes: likes}
	if p != nil {
		if detail.LikedByMe, err = s.likes.Exists(ctx, p.ID, id); err != nil {
			return nil, fmt.Errorf("failed to load like state: %w", err)
		}
	}
	return detail, nil
}

// ListPosts returns one page of all posts, newest first
func (s *Service) ListPosts(ctx context.Context, req PageRequest) (*Page, error) {
	return s.listPage(ctx, "", nil, req)
}

// ListByCategory returns one page of the posts in a category, newest first
func (s *Service) ListByCategory(ctx context.Context, category string, req PageRequest) (*Page, error) {
	return s.listPage(ctx, category, s.opts.Matcher, req)
}

func (s *Service) listPage(ctx context.Context, category string, matcher db.CategoryMatcher, req PageRequest) (*Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.ListPosts")
	defer span.End()

	req = s.NormalizePage(req)
	span.SetAttributes(
		attribute.String("category", category),
		attribute.Int("page", req.Page),
		attribute.Int("page_size", req.PageSize),
	)

	// One extra row tells whether another page exists.
	posts, err := s.posts.List(ctx, db.ListQuery{
		Category: category,
		Matcher:  matcher,
		Limit:    req.PageSize + 1,
		Offset:   req.offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	page := &Page{Page: req.Page, PageSize: req.PageSize}
	if len(posts) > req.PageSize {
		posts = posts[:req.PageSize]
		page.HasMore = true
	}
	page.Posts = posts

	ids := make([]int64, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	if page.LikeCounts, err = s.likes.CountByPosts(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return page, nil
}

func (s *Service) loadPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	return post, nil
}
