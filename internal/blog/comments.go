package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwell/inkwell/internal/models"
	"github.com/inkwell/inkwell/pkg/telemetry"
)

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: comment is empty", ErrValidation)
	}
	return content, nil
}

// AddComment appends a comment by the principal to a post
func (s *Service) AddComment(ctx context.Context, p *Principal, postID int64, content string) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.AddComment")
	defer span.End()

	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:   content,
		CreatedAt: s.opts.Now(),
		AuthorID:  p.ID,
		PostID:    postID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.Author = &models.User{ID: p.ID, Username: p.Username}

	s.opts.Counters.CommentCreated(ctx)
	return comment, nil
}

// EditComment replaces the body of a comment. Only the author may edit.
func (s *Service) EditComment(ctx context.Context, p *Principal, id int64, content string) (*models.Comment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(p, comment.AuthorID) {
		return nil, fmt.Errorf("%w: only the author can edit this comment", ErrForbidden)
	}
	if content, err = validateComment(content); err != nil {
		return nil, err
	}

	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	comment.Content = content
	return comment, nil
}

// DeleteComment removes a comment. The author or an admin may delete.
// It returns the deleted comment so callers know which post it was on.
func (s *Service) DeleteComment(ctx context.Context, p *Principal, id int64) (*models.Comment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canDelete(p, comment.AuthorID) {
		return nil, fmt.Errorf("%w: only the author or an admin can delete this comment", ErrForbidden)
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete comment: %w", err)
	}
	return comment, nil
}

func (s *Service) loadComment(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("%w: comment %d", ErrNotFound, id)
	}
	return comment, nil
}
