package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type memoryRevocations map[string]time.Duration

func (m memoryRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m[id] = ttl
	return nil
}

func (m memoryRevocations) Revoked(_ context.Context, id string) (bool, error) {
	_, ok := m[id]
	return ok, nil
}

func newTestManager(now *time.Time, revocations RevocationStore) *SessionManager {
	return NewSessionManager(SessionOptions{
		Secret:      []byte("0123456789abcdef"),
		TTL:         time.Hour,
		Revocations: revocations,
		Now:         func() time.Time { return *now },
	})
}

func TestSessionRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := newTestManager(&now, nil)

	token, expires, err := m.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Errorf("expires = %v, want %v", expires, now.Add(time.Hour))
	}

	s, err := m.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if s.UserID != 42 || s.TokenID == "" {
		t.Errorf("Verify() = %+v", s)
	}
}

func TestSessionRejects(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := newTestManager(&now, nil)
	token, _, err := m.Issue(7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewSessionManager(SessionOptions{Secret: []byte("another-secret-value"), TTL: time.Hour})

	tests := []struct {
		name   string
		verify func() error
	}{
		{"garbage", func() error { _, err := m.Verify(context.Background(), "abc"); return err }},
		{"wrong secret", func() error { _, err := other.Verify(context.Background(), token); return err }},
		{"expired", func() error {
			later := now.Add(2 * time.Hour)
			_, err := newTestManager(&later, nil).Verify(context.Background(), token)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.verify(); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestSessionRevoke(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	revocations := memoryRevocations{}
	m := newTestManager(&now, revocations)

	token, _, _ := m.Issue(9)
	s, err := m.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if err := m.Revoke(context.Background(), s); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revocations[s.TokenID] != time.Hour {
		t.Errorf("revocation ttl = %v, want 1h", revocations[s.TokenID])
	}
	if _, err := m.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() after revoke error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	m := NewSessionManager(SessionOptions{Secret: []byte("0123456789abcdef"), TTL: time.Hour})

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"none", func(*http.Request) {}, ""},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "inkwell_session", Value: "c-token"})
		}, "c-token"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer b-token") }, "b-token"},
		{"cookie wins", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "inkwell_session", Value: "c-token"})
			r.Header.Set("Authorization", "Bearer b-token")
		}, "c-token"},
		{"basic ignored", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			if got := m.TokenFromRequest(r); got != tt.want {
				t.Errorf("TokenFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCookies(t *testing.T) {
	m := NewSessionManager(SessionOptions{Secret: []byte("0123456789abcdef"), TTL: time.Hour})

	rec := httptest.NewRecorder()
	m.SetCookie(rec, "tok", time.Now().Add(time.Hour))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "tok" || !cookies[0].HttpOnly {
		t.Fatalf("SetCookie() wrote %+v", cookies)
	}

	rec = httptest.NewRecorder()
	m.ClearCookie(rec)
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Fatalf("ClearCookie() wrote %+v", cookies)
	}
}
