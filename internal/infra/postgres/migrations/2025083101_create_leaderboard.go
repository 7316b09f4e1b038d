package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createLeaderboardSQL = `
CREATE TABLE IF NOT EXISTS leaderboard (
	id TEXT PRIMARY KEY,
	player_name TEXT NOT NULL,
	score INT NOT NULL,
	total_questions INT NOT NULL,
	user_id TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS leaderboard_rank_idx ON leaderboard (score DESC, submitted_at DESC);
`

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createLeaderboardSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS leaderboard`)
			return err
		},
	)
}
