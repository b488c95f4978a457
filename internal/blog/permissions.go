package blog

import (
	"fmt"

	"github.com/inkwell/inkwell/internal/models"
)

// Principal is the signed-in user acting on a request. A nil *Principal is
// an anonymous request.
type Principal struct {
	ID       int64
	Username string
	IsAdmin  bool
}

// PrincipalFromUser builds a principal from a loaded user row
func PrincipalFromUser(u *models.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

func requirePrincipal(p *Principal) error {
	if p == nil {
		return ErrUnauthenticated
	}
	return nil
}

// Only the author may edit; admins moderate by deleting.
func canEdit(p *Principal, authorID int64) bool {
	return p != nil && p.ID == authorID
}

func canDelete(p *Principal, authorID int64) bool {
	return p != nil && (p.ID == authorID || p.IsAdmin)
}

func requireAdmin(p *Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !p.IsAdmin {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	return nil
}
