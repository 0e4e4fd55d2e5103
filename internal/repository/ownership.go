package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bondigo/internal/model"
)

// Ownership errors.
var (
	ErrOwnershipNotFound  = errors.New("ownership record not found")
	ErrDuplicateOwnership = errors.New("companion already owned")
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// OwnershipRepository handles user×companion ownership persistence.
type OwnershipRepository struct {
	pool *pgxpool.Pool
}

// NewOwnershipRepository creates a new OwnershipRepository instance.
func NewOwnershipRepository(pool *pgxpool.Pool) *OwnershipRepository {
	return &OwnershipRepository{pool: pool}
}

// Insert creates one ownership record. The (user_id, companion_id) pair is
// unique; a second writer hitting the same pair gets ErrDuplicateOwnership,
// which is how cross-session purchase races surface.
func (r *OwnershipRepository) Insert(ctx context.Context, userID, companionID string, revealed bool, mysteryTier string) (*model.Ownership, error) {
	const query = `
		INSERT INTO ownership (user_id, companion_id, revealed, mystery_tier, bonded_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING user_id, companion_id, revealed, mystery_tier, bonded_at
	`

	var o model.Ownership
	err := r.pool.QueryRow(ctx, query, userID, companionID, revealed, mysteryTier).Scan(
		&o.UserID,
		&o.CompanionID,
		&o.Revealed,
		&o.MysteryTier,
		&o.BondedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateOwnership
		}
		return nil, fmt.Errorf("failed to insert ownership: %w", err)
	}
	return &o, nil
}

// Get retrieves one ownership record.
func (r *OwnershipRepository) Get(ctx context.Context, userID, companionID string) (*model.Ownership, error) {
	const query = `
		SELECT user_id, companion_id, revealed, mystery_tier, bonded_at
		FROM ownership
		WHERE user_id = $1 AND companion_id = $2
	`

	var o model.Ownership
	err := r.pool.QueryRow(ctx, query, userID, companionID).Scan(
		&o.UserID,
		&o.CompanionID,
		&o.Revealed,
		&o.MysteryTier,
		&o.BondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOwnershipNotFound
		}
		return nil, fmt.Errorf("failed to get ownership: %w", err)
	}
	return &o, nil
}

// Exists checks whether the user already owns the companion.
func (r *OwnershipRepository) Exists(ctx context.Context, userID, companionID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM ownership WHERE user_id = $1 AND companion_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, companionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return exists, nil
}

// ListCompanionIDs returns the ids of every companion the user owns.
func (r *OwnershipRepository) ListCompanionIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT companion_id FROM ownership WHERE user_id = $1 ORDER BY companion_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownership: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan companion id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ownership: %w", err)
	}
	return ids, nil
}

// List returns the user's full ownership records, oldest bond first.
func (r *OwnershipRepository) List(ctx context.Context, userID string) ([]*model.Ownership, error) {
	const query = `
		SELECT user_id, companion_id, revealed, mystery_tier, bonded_at
		FROM ownership
		WHERE user_id = $1
		ORDER BY bonded_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownership: %w", err)
	}
	defer rows.Close()

	var out []*model.Ownership
	for rows.Next() {
		var o model.Ownership
		if err := rows.Scan(&o.UserID, &o.CompanionID, &o.Revealed, &o.MysteryTier, &o.BondedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ownership: %w", err)
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ownership: %w", err)
	}
	return out, nil
}

// MarkRevealed flips the revealed flag to true. The WHERE clause only
// matches unrevealed rows, so the transition fires at most once; the bool
// result reports whether this call was the one that flipped it.
func (r *OwnershipRepository) MarkRevealed(ctx context.Context, userID, companionID string) (bool, error) {
	const query = `
		UPDATE ownership
		SET revealed = TRUE
		WHERE user_id = $1 AND companion_id = $2 AND NOT revealed
	`

	result, err := r.pool.Exec(ctx, query, userID, companionID)
	if err != nil {
		return false, fmt.Errorf("failed to mark revealed: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Count returns the size of the user's collection.
func (r *OwnershipRepository) Count(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM ownership WHERE user_id = $1`

	var n int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ownership: %w", err)
	}
	return n, nil
}
