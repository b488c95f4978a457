package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Counters are the domain event counters exported through the meter provider.
// A zero Counters value is safe to use and records nothing.
type Counters struct {
	postsCreated    metric.Int64Counter
	commentsCreated metric.Int64Counter
	likesCreated    metric.Int64Counter
	usersRegistered metric.Int64Counter
}

// NewCounters creates the counters on the current global meter provider.
// Init calls it once the providers are installed.
func NewCounters() (*Counters, error) {
	meter := otel.Meter(instrumentationName)

	var (
		c   Counters
		err error
	)
	if c.postsCreated, err = meter.Int64Counter("inkwell.posts.created",
		metric.WithDescription("Posts created")); err != nil {
		return nil, err
	}
	if c.commentsCreated, err = meter.Int64Counter("inkwell.comments.created",
		metric.WithDescription("Comments created")); err != nil {
		return nil, err
	}
	if c.likesCreated, err = meter.Int64Counter("inkwell.likes.created",
		metric.WithDescription("Likes recorded, duplicates excluded")); err != nil {
		return nil, err
	}
	if c.usersRegistered, err = meter.Int64Counter("inkwell.users.registered",
		metric.WithDescription("Accounts registered")); err != nil {
		return nil, err
	}
	return &c, nil
}

func add(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}

// PostCreated records a new post
func (c *Counters) PostCreated(ctx context.Context) {
	if c != nil {
		add(ctx, c.postsCreated)
	}
}

// CommentCreated records a new comment
func (c *Counters) CommentCreated(ctx context.Context) {
	if c != nil {
		add(ctx, c.commentsCreated)
	}
}

// LikeCreated records a new like
func (c *Counters) LikeCreated(ctx context.Context) {
	if c != nil {
		add(ctx, c.likesCreated)
	}
}

// UserRegistered records a new account
func (c *Counters) UserRegistered(ctx context.Context) {
	if c != nil {
		add(ctx, c.usersRegistered)
	}
}
