package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bondigo/internal/model"
)

// TransactionRepository handles the token ledger.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new ledger entry. Purchases pass the companion id so the
// reconciliation sweep can match the debit against an ownership row.
func (r *TransactionRepository) Create(ctx context.Context, userID string, amount int64, txType string, companionID, description *string) (*model.Transaction, error) {
	const query = `
		INSERT INTO transactions (user_id, amount, type, companion_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, amount, type, companion_id, description, created_at
	`

	var tx model.Transaction
	err := r.pool.QueryRow(ctx, query, userID, amount, txType, companionID, description).Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Type,
		&tx.CompanionID,
		&tx.Description,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &tx, nil
}

// CreateWithTime creates a ledger entry with a specific timestamp.
// Useful for testing and data migration.
func (r *TransactionRepository) CreateWithTime(ctx context.Context, userID string, amount int64, txType string, companionID, description *string, createdAt time.Time) (*model.Transaction, error) {
	const query = `
		INSERT INTO transactions (user_id, amount, type, companion_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, amount, type, companion_id, description, created_at
	`

	var tx model.Transaction
	err := r.pool.QueryRow(ctx, query, userID, amount, txType, companionID, description, createdAt).Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Type,
		&tx.CompanionID,
		&tx.Description,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &tx, nil
}

// GetByUserID retrieves ledger entries for a user, newest first.
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT id, user_id, amount, type, companion_id, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var tx model.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&tx.Type,
			&tx.CompanionID,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// FindUnreconciledPurchases returns purchase debits older than olderThan
// that have no matching ownership row and no later refund: the "debited but
// not granted" failure mode a crash between debit and insert leaves behind.
// The age bound keeps in-flight purchases out of the result; the debit,
// ledger row, and ownership insert commit separately, so a row younger than
// the bound may simply not have its grant yet.
func (r *TransactionRepository) FindUnreconciledPurchases(ctx context.Context, olderThan time.Time, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT t.id, t.user_id, t.amount, t.type, t.companion_id, t.description, t.created_at
		FROM transactions t
		WHERE t.type = ANY($1)
		  AND t.companion_id IS NOT NULL
		  AND t.created_at <= $2
		  AND NOT EXISTS (
			SELECT 1 FROM ownership o
			WHERE o.user_id = t.user_id AND o.companion_id = t.companion_id
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM transactions ref
			WHERE ref.type = 'refund'
			  AND ref.user_id = t.user_id
			  AND ref.companion_id = t.companion_id
			  AND ref.created_at >= t.created_at
		  )
		ORDER BY t.created_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.PurchaseTransactionTypes(), olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find unreconciled purchases: %w", err)
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var tx model.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&tx.Type,
			&tx.CompanionID,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
