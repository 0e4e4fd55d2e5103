// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bondigo/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

const userColumns = `id, username, tokens, last_airdrop, bond_xp, bond_level, bond_title,
	collection_score, collection_level, collection_title, created_at, updated_at`

// UserRepository handles user wallet and progression persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Tokens,
		&u.LastAirdrop,
		&u.BondXP,
		&u.BondLevel,
		&u.BondTitle,
		&u.CollectionScore,
		&u.CollectionLevel,
		&u.CollectionTitle,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create creates a new user with the given starting token balance.
func (r *UserRepository) Create(ctx context.Context, id, username string, startingTokens int64) (*model.User, error) {
	query := `
		INSERT INTO users (id, username, tokens, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, username, startingTokens))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetOrCreate retrieves a user by ID, creating one if it doesn't exist.
func (r *UserRepository) GetOrCreate(ctx context.Context, id, username string, startingTokens int64) (*model.User, bool, error) {
	user, err := r.GetByID(ctx, id)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	user, err = r.Create(ctx, id, username, startingTokens)
	if err != nil {
		// Handle race condition: another request might have created the user
		user, err = r.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return user, false, nil
	}

	return user, true, nil
}

// DebitTokens subtracts amount from the user's balance as a single
// conditional update. The debit either happens whole or not at all; a
// balance below amount returns ErrInsufficientTokens with no change.
func (r *UserRepository) DebitTokens(ctx context.Context, id string, amount int64) (*model.User, error) {
	query := `
		UPDATE users
		SET tokens = tokens - $2, updated_at = NOW()
		WHERE id = $1 AND tokens >= $2
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing user from a short balance.
			exists, exErr := r.Exists(ctx, id)
			if exErr != nil {
				return nil, exErr
			}
			if !exists {
				return nil, ErrUserNotFound
			}
			return nil, ErrInsufficientTokens
		}
		return nil, fmt.Errorf("failed to debit tokens: %w", err)
	}
	return user, nil
}

// CreditTokens adds amount to the user's balance.
func (r *UserRepository) CreditTokens(ctx context.Context, id string, amount int64) (*model.User, error) {
	query := `
		UPDATE users
		SET tokens = tokens + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to credit tokens: %w", err)
	}
	return user, nil
}

// ApplyAirdrop credits amount and stamps last_airdrop, but only when the
// last grant (or account creation, if never granted) is at or before the
// cutoff. The decision is made against the stored timestamp inside the
// update itself, so repeated calls within the window are no-ops.
// Returns the user and whether the grant happened.
func (r *UserRepository) ApplyAirdrop(ctx context.Context, id string, amount int64, cutoff time.Time) (*model.User, bool, error) {
	query := `
		UPDATE users
		SET tokens = tokens + $2, last_airdrop = NOW(), updated_at = NOW()
		WHERE id = $1 AND GREATEST(COALESCE(last_airdrop, created_at), created_at) <= $3
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, amount, cutoff))
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to apply airdrop: %w", err)
	}

	// No grant: either the window has not elapsed or the user is unknown.
	user, err = r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return user, false, nil
}

// AddBondXP increments bond XP as a relative update and returns the user as
// written. Concurrent awards compose instead of overwriting each other, so
// the increment stays correct across replicas.
func (r *UserRepository) AddBondXP(ctx context.Context, id string, delta int64) (*model.User, error) {
	query := `
		UPDATE users
		SET bond_xp = bond_xp + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to add bond xp: %w", err)
	}
	return user, nil
}

// SetBondLevel persists the level and title derived from xp, guarded on
// bond_xp still holding that value. A missed guard means another award
// landed in between and its writer owns the derivation; skipping the write
// is the correct outcome, not an error.
func (r *UserRepository) SetBondLevel(ctx context.Context, id string, xp int64, level int, title string) error {
	const query = `
		UPDATE users
		SET bond_level = $3, bond_title = $4, updated_at = NOW()
		WHERE id = $1 AND bond_xp = $2
	`

	if _, err := r.pool.Exec(ctx, query, id, xp, level, title); err != nil {
		return fmt.Errorf("failed to set bond level: %w", err)
	}
	return nil
}

// SetCollectionScore persists the collection score together with its
// derived level and title.
func (r *UserRepository) SetCollectionScore(ctx context.Context, id string, score int64, level int, title string) (*model.User, error) {
	query := `
		UPDATE users
		SET collection_score = $2, collection_level = $3, collection_title = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, score, level, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set collection score: %w", err)
	}
	return user, nil
}

// UpdateUsername updates a user's username.
func (r *UserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	const query = `
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Exists checks if a user with the given ID exists.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
