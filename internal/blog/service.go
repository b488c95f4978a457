package blog

import (
	"time"

	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/pkg/logging"
	"github.com/inkwell/inkwell/pkg/telemetry"
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	// Matcher decides category membership; defaults to db.SubstringMatcher.
	Matcher  db.CategoryMatcher
	Counters *telemetry.Counters
	Now      func() time.Time
}

// Service implements the blog's use cases: accounts, posts, comments, likes
// and listings, with the ownership rules applied before every mutation.
type Service struct {
	users     *db.UserRepository
	posts     *db.PostRepository
	comments  *db.CommentRepository
	likes     *db.LikeRepository
	passwords *auth.Passwords
	opts      Options
	logger    *zap.Logger
}

// NewService creates a blog service
func NewService(repo *db.Repository, passwords *auth.Passwords, opts Options) *Service {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	if opts.Matcher == nil {
		opts.Matcher = db.SubstringMatcher{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		users:     db.NewUserRepository(repo),
		posts:     db.NewPostRepository(repo),
		comments:  db.NewCommentRepository(repo),
		likes:     db.NewLikeRepository(repo),
		passwords: passwords,
		opts:      opts,
		logger:    logging.WithComponent("blog"),
	}
}
