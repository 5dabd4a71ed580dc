package identity

import (
	"context"
	"strings"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountModel is the credential record owned by the identity provider.
type AccountModel struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	EmailVerified bool      `bun:"email_verified,notnull" json:"email_verified"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// ToUser projects the account to the public user shape.
func (a *AccountModel) ToUser() *account.User {
	if a == nil {
		return nil
	}
	return &account.User{
		ID:            a.ID.String(),
		Name:          a.Name,
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
	}
}

// Accounts is the credential store. Lookups that find nothing return a
// repository not found error.
type Accounts interface {
	GetByEmail(ctx context.Context, email string) (*AccountModel, error)
	GetByID(ctx context.Context, id string) (*AccountModel, error)
	Create(ctx context.Context, record *AccountModel) (*AccountModel, error)
	Update(ctx context.Context, record *AccountModel) (*AccountModel, error)
}

type accounts struct {
	repo repository.Repository[*AccountModel]
}

// NewAccountsRepository creates a Bun backed Accounts store.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*AccountModel](db, repository.ModelHandlers[*AccountModel]{
		NewRecord: func() *AccountModel { return &AccountModel{} },
		GetID: func(a *AccountModel) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *AccountModel, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{repo: repo}
}

// MigrateAccounts creates the accounts table when missing.
func MigrateAccounts(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*AccountModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*AccountModel, error) {
	return a.repo.GetByIdentifier(ctx, normalizeEmail(email))
}

func (a *accounts) GetByID(ctx context.Context, id string) (*AccountModel, error) {
	return a.repo.GetByID(ctx, id)
}

func (a *accounts) Create(ctx context.Context, record *AccountModel) (*AccountModel, error) {
	return a.repo.Create(ctx, record)
}

func (a *accounts) Update(ctx context.Context, record *AccountModel) (*AccountModel, error) {
	record.UpdatedAt = time.Now()
	return a.repo.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
