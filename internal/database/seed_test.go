package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin(t *testing.T) {
	cfg := config.AdminConfig{Name: "Root", Email: "root@example.com", Password: "S3cret!pass"}
	existsQuery := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)")

	t.Run("disabled", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, EnsureAdmin(context.Background(), sqlx.NewDb(db, "mysql"), config.AdminConfig{}, logrus.NewEntry(logrus.New())))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already present", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(existsQuery).WithArgs(cfg.Email).WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))

		require.NoError(t, EnsureAdmin(context.Background(), sqlx.NewDb(db, "mysql"), cfg, logrus.NewEntry(logrus.New())))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("created", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(existsQuery).WithArgs(cfg.Email).WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("Root", cfg.Email, sqlmock.AnyArg(), "admin").
			WillReturnResult(sqlmock.NewResult(1, 1))

		logger, hook := test.NewNullLogger()
		require.NoError(t, EnsureAdmin(context.Background(), sqlx.NewDb(db, "mysql"), cfg, logrus.NewEntry(logger)))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, "bootstrap administrator created", hook.LastEntry().Message)
	})
}
