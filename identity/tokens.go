package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenPurpose scopes an action token to a single flow.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify_email"
	PurposePasswordReset TokenPurpose = "password_reset"
	PurposeSession       TokenPurpose = "session"
)

// ActionClaims are the claims carried by emailed action links.
type ActionClaims struct {
	jwt.RegisteredClaims
	Purpose TokenPurpose `json:"pur"`
}

// ActionTokens signs and checks the single purpose tokens sent by email.
type ActionTokens struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
}

// NewActionTokens creates an HS256 token issuer.
func NewActionTokens(signingKey []byte, ttl time.Duration, issuer string) *ActionTokens {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ActionTokens{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		now:        time.Now,
	}
}

// Issue signs a token for subject.
func (t *ActionTokens) Issue(purpose TokenPurpose, subject string) (string, error) {
	now := t.now()
	claims := &ActionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Purpose: purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign action token")
	}
	return signed, nil
}

// Parse validates token and checks that it was issued for purpose.
func (t *ActionTokens) Parse(tokenString string, purpose TokenPurpose) (*ActionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if t.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(t.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &ActionClaims{}, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.signingKey, nil
	}, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ActionClaims)
	if !ok || !token.Valid || claims.Purpose != purpose || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueSession signs a bearer token tying an HTTP client to userID.
func (t *ActionTokens) IssueSession(userID string) (string, error) {
	return t.Issue(PurposeSession, userID)
}

// ParseSession returns the user id a session token was issued for.
func (t *ActionTokens) ParseSession(token string) (string, error) {
	claims, err := t.Parse(token, PurposeSession)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
