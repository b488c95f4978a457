package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that are malformed, expired,
// badly signed or revoked
var ErrInvalidToken = errors.New("invalid session token")

// RevocationStore remembers revoked token ids until they would have expired
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// Claims are the session token claims. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionOptions configures a SessionManager
type SessionOptions struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Secure     bool
	// Revocations is optional; without it logout only clears the cookie.
	Revocations RevocationStore
	Now         func() time.Time
}

// SessionManager issues and verifies session tokens. A token identifies a
// user by immutable id, so renaming an account keeps its sessions valid.
type SessionManager struct {
	opts SessionOptions
}

// Session is a verified token
type Session struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// NewSessionManager creates a session manager
func NewSessionManager(opts SessionOptions) *SessionManager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CookieName == "" {
		opts.CookieName = "inkwell_session"
	}
	return &SessionManager{opts: opts}
}

// CookieName returns the name of the session cookie
func (m *SessionManager) CookieName() string {
	return m.opts.CookieName
}

// Issue creates a signed token for a user
func (m *SessionManager) Issue(userID int64) (string, time.Time, error) {
	now := m.opts.Now()
	expires := now.Add(m.opts.TTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.opts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expires, nil
}

// Verify parses and checks a token
func (m *SessionManager) Verify(ctx context.Context, token string) (*Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.opts.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}

	if m.opts.Revocations != nil && claims.ID != "" {
		revoked, err := m.opts.Revocations.Revoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
	}

	return &Session{
		UserID:    userID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke invalidates a verified session for the rest of its lifetime
func (m *SessionManager) Revoke(ctx context.Context, s *Session) error {
	if m.opts.Revocations == nil || s == nil || s.TokenID == "" {
		return nil
	}
	return m.opts.Revocations.Revoke(ctx, s.TokenID, s.ExpiresAt.Sub(m.opts.Now()))
}

// TokenFromRequest extracts a token from the session cookie or, failing
// that, a bearer Authorization header
func (m *SessionManager) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SetCookie writes the session cookie
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// ClearCookie expires the session cookie
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
