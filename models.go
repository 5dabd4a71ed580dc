package account

import (
	"strings"
	"time"
)

// User is a directory member. ID is assigned by the identity provider and
// never changes. EmailVerified is refreshed from the identity provider and
// Name from the profile store, so the two may briefly disagree.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// VerificationFilter narrows the directory by email verification status.
type VerificationFilter string

const (
	FilterAll         VerificationFilter = "ALL"
	FilterVerified    VerificationFilter = "VERIFIED"
	FilterNotVerified VerificationFilter = "NOT_VERIFIED"
)

// ParseVerificationFilter accepts the enum names in any case. Unknown
// values resolve to FilterAll.
func ParseVerificationFilter(s string) VerificationFilter {
	switch strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case string(FilterVerified):
		return FilterVerified
	case string(FilterNotVerified), "UNVERIFIED":
		return FilterNotVerified
	default:
		return FilterAll
	}
}

func (f VerificationFilter) match(u User) bool {
	switch f {
	case FilterVerified:
		return u.EmailVerified
	case FilterNotVerified:
		return !u.EmailVerified
	default:
		return true
	}
}

// FilterUsers projects users through the verification filter and then a
// case-insensitive substring search on name or email. A blank query skips
// the search step. The input slice is never modified.
func FilterUsers(users []User, filter VerificationFilter, query string) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if filter.match(u) {
			out = append(out, u)
		}
	}

	if strings.TrimSpace(query) == "" {
		return out
	}

	q := strings.ToLower(query)
	searched := out[:0]
	for _, u := range out {
		if strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			searched = append(searched, u)
		}
	}
	return searched
}
