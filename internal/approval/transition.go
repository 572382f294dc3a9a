package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/jmoiron/sqlx"
)

// transition moves row id of table from one status to another with a single
// conditional UPDATE. When no row matches it tells NotFound apart from
// AlreadyProcessed. After a successful transition the row stays locked by
// the UPDATE until the transaction ends, so the caller may read it freely.
func transition(ctx context.Context, tx *sqlx.Tx, table string, id int64, from, to any) error {
	query := fmt.Sprintf("UPDATE %s SET status = ? WHERE id = ? AND status = ?", table)
	res, err := tx.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %d: %w", table, id, err)
	}
	if n == 1 {
		return nil
	}

	var current string
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT status FROM %s WHERE id = ?", table), id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", table, id, apperror.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s %d: %w", table, id, err)
	}
	return fmt.Errorf("%s %d is %s: %w", table, id, current, apperror.ErrAlreadyProcessed)
}
