package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bondigo/internal/model"
)

// ErrBondNotFound is returned when no companion-bond record exists yet.
var ErrBondNotFound = errors.New("companion bond not found")

// BondRepository handles per-companion engagement counters. Records are
// created lazily on first message.
type BondRepository struct {
	pool *pgxpool.Pool
}

// NewBondRepository creates a new BondRepository instance.
func NewBondRepository(pool *pgxpool.Pool) *BondRepository {
	return &BondRepository{pool: pool}
}

// RecordMessage upserts the bond row for one sent message, bumping the
// message counter and accumulated XP in a single statement.
func (r *BondRepository) RecordMessage(ctx context.Context, userID, companionID string, xp int64) (*model.CompanionBond, error) {
	const query = `
		INSERT INTO companion_bonds (user_id, companion_id, messages_sent, total_xp_earned, last_interaction_at)
		VALUES ($1, $2, 1, $3, NOW())
		ON CONFLICT (user_id, companion_id)
		DO UPDATE SET
			messages_sent = companion_bonds.messages_sent + 1,
			total_xp_earned = companion_bonds.total_xp_earned + $3,
			last_interaction_at = NOW()
		RETURNING user_id, companion_id, messages_sent, total_xp_earned, last_interaction_at
	`

	var b model.CompanionBond
	err := r.pool.QueryRow(ctx, query, userID, companionID, xp).Scan(
		&b.UserID,
		&b.CompanionID,
		&b.MessagesSent,
		&b.TotalXPEarned,
		&b.LastInteractionAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}
	return &b, nil
}

// Get retrieves the bond record for one user×companion pair.
func (r *BondRepository) Get(ctx context.Context, userID, companionID string) (*model.CompanionBond, error) {
	const query = `
		SELECT user_id, companion_id, messages_sent, total_xp_earned, last_interaction_at
		FROM companion_bonds
		WHERE user_id = $1 AND companion_id = $2
	`

	var b model.CompanionBond
	err := r.pool.QueryRow(ctx, query, userID, companionID).Scan(
		&b.UserID,
		&b.CompanionID,
		&b.MessagesSent,
		&b.TotalXPEarned,
		&b.LastInteractionAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBondNotFound
		}
		return nil, fmt.Errorf("failed to get bond: %w", err)
	}
	return &b, nil
}

// ListByUser returns all bond records for a user, most recent first.
func (r *BondRepository) ListByUser(ctx context.Context, userID string) ([]*model.CompanionBond, error) {
	const query = `
		SELECT user_id, companion_id, messages_sent, total_xp_earned, last_interaction_at
		FROM companion_bonds
		WHERE user_id = $1
		ORDER BY last_interaction_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}
	defer rows.Close()

	var out []*model.CompanionBond
	for rows.Next() {
		var b model.CompanionBond
		if err := rows.Scan(&b.UserID, &b.CompanionID, &b.MessagesSent, &b.TotalXPEarned, &b.LastInteractionAt); err != nil {
			return nil, fmt.Errorf("failed to scan bond: %w", err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bonds: %w", err)
	}
	return out, nil
}
