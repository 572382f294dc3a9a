package ai

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReadOnly(t *testing.T) {
	allowed := []string{
		"SELECT COUNT(*) FROM withdrawals WHERE status = 'Pending'",
		"  select name from listings order by views desc limit 5;",
		"WITH t AS (SELECT buyer_id FROM transactions) SELECT COUNT(*) FROM t",
		"SELECT updated_at FROM ledgers",
	}
	for _, q := range allowed {
		assert.NoError(t, checkReadOnly(q), q)
	}

	denied := []string{
		"",
		"UPDATE ledgers SET main_wallet_balance = 100",
		"SELECT 1; DROP TABLE users",
		"DELETE FROM offers",
		"SELECT * FROM users INTO OUTFILE '/tmp/x'",
		"SHOW TABLES",
		"WITH x AS (SELECT 1) DELETE FROM users",
	}
	for _, q := range denied {
		assert.ErrorIs(t, checkReadOnly(q), ErrNotReadOnly, q)
	}
}

func TestRunReadOnlyQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, views FROM listings").
		WillReturnRows(sqlmock.NewRows([]string{"name", "views"}).AddRow([]byte("Genesis"), int64(12)))

	s := &AIService{DB: sqlx.NewDb(db, "mysql")}
	out, err := s.runReadOnlyQuery(context.Background(), "SELECT name, views FROM listings")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Genesis","views":12}]`, out)

	_, err = s.runReadOnlyQuery(context.Background(), "DROP TABLE listings")
	assert.ErrorIs(t, err, ErrNotReadOnly)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaCoversMarketplaceTables(t *testing.T) {
	for _, table := range []string{"ledgers", "withdrawals", "transactions", "mint_requests", "offers"} {
		assert.Contains(t, Schema, "- "+table+" (")
	}
}
