package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"export_id", "opportunity_key", "match", "competition", "market", "bookmaker", "odds", "ev", "stake", "line", "exported_at"}

func TestRecentExports(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM bet_exports`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("e-2", "c vs d|ml|pinnacle", "C vs D", "NFL", "ML", "Pinnacle", 1.9, 4.0, 20.0, "Jogo: C vs D", at).
			AddRow("e-1", "a vs b|1x2|bet365", "A vs B", "Série A", "1X2", "Bet365", 2.1, 5.5, 10.0, "Jogo: A vs B", at.Add(-time.Minute)))

	r := &ReadRepo{DB: db}
	out, err := r.RecentExports(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "e-2", out[0].ExportID)
	assert.Equal(t, 1.9, out[0].Odds)
	assert.Equal(t, at, out[0].ExportedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentExports_ClampsLimitAndEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM bet_exports`).WithArgs(MaxRecent).WillReturnRows(sqlmock.NewRows(columns))

	out, err := (&ReadRepo{DB: db}).RecentExports(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}
