package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/value-bet-feed/internal/feed-service/dto"
)

// MaxRecent limita o tamanho de uma página do diário.
const MaxRecent = 200

type ReadRepo struct {
	DB *sql.DB
}

// RecentExports lista as exportações mais recentes primeiro.
func (r *ReadRepo) RecentExports(ctx context.Context, limit int) ([]dto.Export, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	const q = `
		SELECT export_id, opportunity_key, match, competition, market, bookmaker, odds, ev, stake, line, exported_at
		FROM bet_exports
		ORDER BY exported_at DESC
		LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []dto.Export{}
	for rows.Next() {
		var e dto.Export
		if err := rows.Scan(&e.ExportID, &e.Key, &e.Match, &e.Competition, &e.Market, &e.Bookmaker,
			&e.Odds, &e.EV, &e.Stake, &e.Line, &e.ExportedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
