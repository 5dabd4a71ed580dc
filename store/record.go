package store

import (
	"strings"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/uptrace/bun"
)

// ProfileModel is the Bun model for a directory profile. Columns are
// nullable so rows written by other clients can be read and rejected
// instead of failing the whole query.
type ProfileModel struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	UID           string  `bun:"uid,pk"`
	Name          *string `bun:"name"`
	Email         *string `bun:"email"`
	EmailVerified *bool   `bun:"email_verified"`
	// CreatedAt is unix nanoseconds. bun writes time.Time columns at
	// microsecond precision.
	CreatedAt *int64 `bun:"created_at"`
}

func newProfileModel(u account.User) *ProfileModel {
	name := u.Name
	email := u.Email
	verified := u.EmailVerified
	createdAt := u.CreatedAt.UnixNano()

	return &ProfileModel{
		UID:           u.ID,
		Name:          &name,
		Email:         &email,
		EmailVerified: &verified,
		CreatedAt:     &createdAt,
	}
}

// toUser decodes the model. It reports false for rows missing the fields
// every profile must have.
func (m *ProfileModel) toUser() (account.User, bool) {
	if m == nil || strings.TrimSpace(m.UID) == "" || m.Email == nil || m.CreatedAt == nil {
		return account.User{}, false
	}

	u := account.User{
		ID:        m.UID,
		Email:     *m.Email,
		CreatedAt: time.Unix(0, *m.CreatedAt).UTC(),
	}
	if m.Name != nil {
		u.Name = *m.Name
	}
	if m.EmailVerified != nil {
		u.EmailVerified = *m.EmailVerified
	}
	return u, true
}

func decodeProfiles(rows []ProfileModel) ([]account.User, int) {
	users := make([]account.User, 0, len(rows))
	skipped := 0
	for i := range rows {
		u, ok := rows[i].toUser()
		if !ok {
			skipped++
			continue
		}
		users = append(users, u)
	}
	return users, skipped
}
