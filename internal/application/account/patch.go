package account

import (
	"strings"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

// Patch carries the account fields a caller may override. A nil field is
// left unchanged. ID and CreatedAt are deliberately absent: they cannot be
// patched.
type Patch struct {
	Email    *string
	Username *string
	Role     *entity.Role
	Password *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Email == nil && p.Username == nil && p.Role == nil && p.Password == nil
}

// Merge returns a new account built from cur with the patch applied.
// passwordHash replaces the stored hash only when the patch carries a
// password; callers hash it beforehand.
func (p Patch) Merge(cur entity.Account, passwordHash string) entity.Account {
	next := cur
	if p.Email != nil {
		next.Email = normalizeEmail(*p.Email)
	}
	if p.Username != nil {
		next.Username = strings.TrimSpace(*p.Username)
	}
	if p.Role != nil {
		next.Role = *p.Role
	}
	if p.Password != nil {
		next.PasswordHash = passwordHash
	}
	return next
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
