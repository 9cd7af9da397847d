package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

func TestInsertExport(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	e := events.BetExported{
		ExportID: "8c2b7f7e-4d0a-4c56-9a43-1f0b1f6a7f10", Key: "a vs b|1x2|bet365",
		Match: "A vs B", Competition: "Série A", Market: "1X2", Bookmaker: "Bet365",
		Odds: 2.1, EV: 5.5, Stake: 10, Line: "Jogo: A vs B", Ts: at,
	}
	mock.ExpectExec(`INSERT INTO bet_exports`).
		WithArgs(e.ExportID, e.Key, e.Match, e.Competition, e.Market, e.Bookmaker, e.Odds, e.EV, e.Stake, e.Line, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresRepo(db).InsertExport(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaPropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS bet_exports`).WillReturnError(errors.New("permission denied"))

	assert.Error(t, NewPostgresRepo(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
