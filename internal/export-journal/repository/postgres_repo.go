package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

// Schema cria a tabela do diário de exportações. Idempotente.
const Schema = `
	CREATE TABLE IF NOT EXISTS bet_exports (
		export_id       UUID PRIMARY KEY,
		opportunity_key TEXT NOT NULL,
		match           TEXT NOT NULL DEFAULT '',
		competition     TEXT NOT NULL DEFAULT '',
		market          TEXT NOT NULL DEFAULT '',
		bookmaker       TEXT NOT NULL DEFAULT '',
		odds            DOUBLE PRECISION NOT NULL DEFAULT 0,
		ev              DOUBLE PRECISION NOT NULL DEFAULT 0,
		stake           DOUBLE PRECISION NOT NULL DEFAULT 0,
		line            TEXT NOT NULL,
		exported_at     TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS bet_exports_exported_at_idx ON bet_exports (exported_at DESC);
`

// PostgresRepo grava o diário de exportações
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, Schema)
	return err
}

// InsertExport grava a exportação. Reentregas do Kafka com o mesmo
// export_id são ignoradas pelo ON CONFLICT.
func (r *PostgresRepo) InsertExport(ctx context.Context, e events.BetExported) error {
	const q = `
		INSERT INTO bet_exports
		  (export_id, opportunity_key, match, competition, market, bookmaker, odds, ev, stake, line, exported_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (export_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.ExportID, e.Key, e.Match, e.Competition, e.Market, e.Bookmaker,
		e.Odds, e.EV, e.Stake, e.Line, e.Ts,
	)
	return err
}
