package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migrations are applied in order on startup. Statements are idempotent so
// the schema converges on every run.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "users table",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				username VARCHAR(255) NOT NULL UNIQUE,
				tokens BIGINT NOT NULL DEFAULT 0 CHECK (tokens >= 0),
				last_airdrop TIMESTAMPTZ,
				bond_xp BIGINT NOT NULL DEFAULT 0,
				bond_level INT NOT NULL DEFAULT 1,
				bond_title VARCHAR(64) NOT NULL DEFAULT 'Bond Newbie',
				collection_score BIGINT NOT NULL DEFAULT 0,
				collection_level INT NOT NULL DEFAULT 1,
				collection_title VARCHAR(64) NOT NULL DEFAULT 'Rookie Collector',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		name: "ownership table",
		sql: `
			CREATE TABLE IF NOT EXISTS ownership (
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				companion_id VARCHAR(64) NOT NULL,
				revealed BOOLEAN NOT NULL DEFAULT FALSE,
				mystery_tier VARCHAR(32) NOT NULL,
				bonded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, companion_id)
			);
		`,
	},
	{
		name: "companion_bonds table",
		sql: `
			CREATE TABLE IF NOT EXISTS companion_bonds (
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				companion_id VARCHAR(64) NOT NULL,
				messages_sent BIGINT NOT NULL DEFAULT 0,
				total_xp_earned BIGINT NOT NULL DEFAULT 0,
				last_interaction_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, companion_id)
			);
		`,
	},
	{
		name: "transactions table",
		sql: `
			CREATE TABLE IF NOT EXISTS transactions (
				id BIGSERIAL PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				amount BIGINT NOT NULL,
				type VARCHAR(50) NOT NULL,
				companion_id VARCHAR(64),
				description TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(user_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_transactions_type_companion ON transactions(type, companion_id);
		`,
	},
}

// Migrate applies the schema. Shared between the server entry point and the
// integration test harness.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return err
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}
	return nil
}
