package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gatehouse/internal/domain"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	query := `
		SELECT user_id, provider, provider_account_id, created_at
		FROM auth_accounts
		WHERE provider = $1 AND provider_account_id = $2
	`

	var a domain.Account
	err := r.db.QueryRow(ctx, query, provider, providerAccountID).Scan(
		&a.UserID,
		&a.Provider,
		&a.ProviderAccountID,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &a, nil
}

// Create is idempotent for an identity already linked to the same user.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO auth_accounts (user_id, provider, provider_account_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, provider_account_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, a.UserID, a.Provider, a.ProviderAccountID, a.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}
