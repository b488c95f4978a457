package blog

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/inkwell/inkwell/pkg/telemetry"
)

// LikeResult reports the outcome of a like request
type LikeResult int

const (
	// Liked means a new like was recorded
	Liked LikeResult = iota + 1
	// AlreadyLiked means the user had liked the post before; nothing changed
	AlreadyLiked
)

func (r LikeResult) String() string {
	switch r {
	case Liked:
		return "liked"
	case AlreadyLiked:
		return "already_liked"
	default:
		return "unknown"
	}
}

// Like records that the principal likes a post. Repeating it is a no-op
// reported as AlreadyLiked.
func (s *Service) Like(ctx context.Context, p *Principal, postID int64) (LikeResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.Like")
	defer span.End()
	span.SetAttributes(attribute.Int64("post.id", postID))

	if err := requirePrincipal(p); err != nil {
		return 0, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return 0, err
	}

	created, err := s.likes.Add(ctx, p.ID, postID, s.opts.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to record like: %w", err)
	}
	if !created {
		return AlreadyLiked, nil
	}
	s.opts.Counters.LikeCreated(ctx)
	return Liked, nil
}

// Unlike withdraws the principal's like and reports whether there was one
func (s *Service) Unlike(ctx context.Context, p *Principal, postID int64) (bool, error) {
	if err := requirePrincipal(p); err != nil {
		return false, err
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return false, err
	}

	removed, err := s.likes.Remove(ctx, p.ID, postID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	return removed, nil
}

// LikeCount returns the number of likes on a post
func (s *Service) LikeCount(ctx context.Context, postID int64) (int64, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return 0, err
	}
	return s.likes.CountByPost(ctx, postID)
}

func (s *Service) requirePost(ctx context.Context, postID int64) error {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to load post: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return nil
}
