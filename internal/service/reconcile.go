package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"bondigo/internal/model"
	"bondigo/internal/repository"
)

// reconcileGrace is how old a purchase debit must be before the sweep may
// refund it. A purchase commits its debit, ledger row, and ownership grant
// as separate statements; refunding a younger row would race the grant and
// hand out both the companion and the tokens.
const reconcileGrace = 5 * time.Minute

// Reconciler sweeps the ledger for purchases that debited tokens without
// granting ownership and credits them back. The sweep is idempotent: a
// refunded purchase stops matching, so re-running it is safe.
type Reconciler struct {
	userRepo *repository.UserRepository
	txRepo   *repository.TransactionRepository
	batch    int
	grace    time.Duration
}

// NewReconciler creates a new Reconciler instance.
func NewReconciler(userRepo *repository.UserRepository, txRepo *repository.TransactionRepository) *Reconciler {
	return &Reconciler{
		userRepo: userRepo,
		txRepo:   txRepo,
		batch:    100,
		grace:    reconcileGrace,
	}
}

// Run executes one sweep and returns the number of refunds issued.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	pending, err := r.txRepo.FindUnreconciledPurchases(ctx, time.Now().Add(-r.grace), r.batch)
	if err != nil {
		return 0, err
	}

	refunded := 0
	for _, tx := range pending {
		// Purchase debits are stored negative; refund the absolute amount.
		amount := -tx.Amount
		if amount <= 0 {
			log.Warn().Int64("tx_id", tx.ID).Msg("Skipping unreconciled purchase with non-negative amount")
			continue
		}

		if _, err := r.userRepo.CreditTokens(ctx, tx.UserID, amount); err != nil {
			log.Error().Err(err).Int64("tx_id", tx.ID).Str("user_id", tx.UserID).Msg("Failed to credit refund")
			continue
		}
		desc := "refund for failed grant"
		if _, err := r.txRepo.Create(ctx, tx.UserID, amount, model.TxTypeRefund, tx.CompanionID, &desc); err != nil {
			// The credit landed but the marker row did not, so the next
			// sweep would refund again. Surface loudly.
			log.Error().Err(err).Int64("tx_id", tx.ID).Str("user_id", tx.UserID).Msg("Refund credited but marker transaction failed")
			return refunded, err
		}

		refunded++
		log.Info().
			Str("user_id", tx.UserID).
			Str("companion_id", *tx.CompanionID).
			Int64("amount", amount).
			Msg("Refunded purchase with no ownership grant")
	}
	return refunded, nil
}
