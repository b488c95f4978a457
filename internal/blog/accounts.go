package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/internal/models"
	"github.com/inkwell/inkwell/pkg/telemetry"
)

const maxUsernameLen = 150

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrValidation)
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "", fmt.Errorf("%w: username is longer than %d characters", ErrValidation, maxUsernameLen)
	}
	if strings.IndexFunc(username, func(r rune) bool { return unicode.IsSpace(r) || r == '/' }) >= 0 {
		return "", fmt.Errorf("%w: username may not contain spaces or slashes", ErrValidation)
	}
	return username, nil
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password is longer than %d bytes", ErrValidation, auth.MaxPasswordBytes)
	}
	return nil
}

// Register creates an account. A taken username yields ErrConflict; the
// unique index decides, so two concurrent registrations cannot both win.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.Register")
	defer span.End()

	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.opts.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %q is already taken", ErrConflict, username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.opts.Counters.UserRegistered(ctx)
	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := s.passwords.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResolvePrincipal loads the current identity of a session's user. It
// returns nil when the account no longer exists.
func (s *Service) ResolvePrincipal(ctx context.Context, userID int64) (*Principal, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return PrincipalFromUser(user), nil
}

// ProfileInput carries a profile edit. Empty Username and Password leave
// those fields alone; nil Bio and ProfileImage do too, while a pointer to
// "" clears them.
type ProfileInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Bio             *string
	ProfileImage    *string
}

// UpdateProfile edits the principal's own account. The request applies
// entirely or not at all: a password mismatch or a taken username leaves
// every field unchanged.
func (s *Service) UpdateProfile(ctx context.Context, p *Principal, in ProfileInput) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.UpdateProfile")
	defer span.End()

	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if in.Password != "" {
		if in.Password != in.ConfirmPassword {
			return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
		}
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
	}

	var changes db.ProfileChanges
	if strings.TrimSpace(in.Username) != "" {
		username, err := validateUsername(in.Username)
		if err != nil {
			return nil, err
		}
		changes.Username = &username
	}
	if in.Password != "" {
		hash, err := s.passwords.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}
	if in.Bio != nil {
		bio := nullString(strings.TrimSpace(*in.Bio))
		changes.Bio = &bio
	}
	if in.ProfileImage != nil {
		path := strings.TrimSpace(*in.ProfileImage)
		if utf8.RuneCountInString(path) > maxImageLen {
			return nil, fmt.Errorf("%w: profile image path is longer than %d characters", ErrValidation, maxImageLen)
		}
		img := nullString(path)
		changes.ProfileImage = &img
	}

	if err := s.users.UpdateProfile(ctx, p.ID, changes); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %q is already taken", ErrConflict, *changes.Username)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, p.ID)
	}
	return user, nil
}

// Profile is a user with everything they wrote, newest first
type Profile struct {
	User     *models.User
	Posts    []*models.Post
	Comments []*models.Comment
}

// GetProfile loads a profile by username
func (s *Service) GetProfile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	return s.profileOf(ctx, user)
}

// GetOwnProfile loads the principal's own profile
func (s *Service) GetOwnProfile(ctx context.Context, p *Principal) (*Profile, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, p.ID)
	}
	return s.profileOf(ctx, user)
}

func (s *Service) profileOf(ctx context.Context, user *models.User) (*Profile, error) {
	posts, err := s.posts.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	comments, err := s.comments.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return &Profile{User: user, Posts: posts, Comments: comments}, nil
}

// Promote grants the admin flag to a user. Only admins may promote;
// promoting an admin again is a no-op.
func (s *Service) Promote(ctx context.Context, p *Principal, userID int64) (*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if user.IsAdmin {
		return user, nil
	}

	if err := s.users.SetAdmin(ctx, userID, true); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	user.IsAdmin = true
	s.logger.Info("User promoted", zap.Int64("user_id", userID), zap.Int64("by", p.ID))
	return user, nil
}

// PromoteByName grants the admin flag without a principal. It is the
// operator's recovery path when no admin account exists.
func (s *Service) PromoteByName(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	if err := s.users.SetAdmin(ctx, user.ID, true); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	user.IsAdmin = true
	return user, nil
}

// Dashboard is the admin overview
type Dashboard struct {
	Users []*models.User
	Posts []*models.Post
}

// AdminDashboard lists every user and every post
func (s *Service) AdminDashboard(ctx context.Context, p *Principal) (*Dashboard, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return &Dashboard{Users: users, Posts: posts}, nil
}
