// Package model defines the persistent data models for the reward engine.
package model

import "time"

// User is a wallet plus progression record. Bond and collection levels are
// derived from their counters and persisted for display; they are always
// recomputed together with the counter they depend on.
type User struct {
	ID              string     `db:"id" json:"id"`
	Username        string     `db:"username" json:"username"`
	Tokens          int64      `db:"tokens" json:"tokens"`
	LastAirdrop     *time.Time `db:"last_airdrop" json:"last_airdrop,omitempty"`
	BondXP          int64      `db:"bond_xp" json:"bond_xp"`
	BondLevel       int        `db:"bond_level" json:"bond_level"`
	BondTitle       string     `db:"bond_title" json:"bond_title"`
	CollectionScore int64      `db:"collection_score" json:"collection_score"`
	CollectionLevel int        `db:"collection_level" json:"collection_level"`
	CollectionTitle string     `db:"collection_title" json:"collection_title"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Ownership is one user×companion acquisition. Created on purchase, never
// deleted in normal operation. Revealed flips to true exactly once, at first
// chat entry after a mystery purchase.
type Ownership struct {
	UserID      string    `db:"user_id" json:"user_id"`
	CompanionID string    `db:"companion_id" json:"companion_id"`
	Revealed    bool      `db:"revealed" json:"revealed"`
	MysteryTier string    `db:"mystery_tier" json:"mystery_tier"`
	BondedAt    time.Time `db:"bonded_at" json:"bonded_at"`
}

// CompanionBond tracks conversational engagement with one companion.
// Created lazily on first message.
type CompanionBond struct {
	UserID            string    `db:"user_id" json:"user_id"`
	CompanionID       string    `db:"companion_id" json:"companion_id"`
	MessagesSent      int64     `db:"messages_sent" json:"messages_sent"`
	TotalXPEarned     int64     `db:"total_xp_earned" json:"total_xp_earned"`
	LastInteractionAt time.Time `db:"last_interaction_at" json:"last_interaction_at"`
}

// Transaction is one token balance change. Purchases carry the companion id
// so the reconciliation sweep can match ledger rows against ownership rows.
type Transaction struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Type        string    `db:"type" json:"type"`
	CompanionID *string   `db:"companion_id" json:"companion_id,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeInitial          = "initial"           // Starting balance on account creation
	TxTypeAirdrop          = "airdrop"           // Daily airdrop grant
	TxTypeMysteryPurchase  = "mystery_purchase"  // Mystery-box tier purchase
	TxTypeSpecificPurchase = "specific_purchase" // Named companion purchase
	TxTypeRefund           = "refund"            // Reconciliation credit for a failed grant
)

// PurchaseTransactionTypes returns the transaction types the reconciliation
// sweep matches against ownership records.
func PurchaseTransactionTypes() []string {
	return []string{TxTypeMysteryPurchase, TxTypeSpecificPurchase}
}
