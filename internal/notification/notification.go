package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

// Execer is satisfied by *sql.Tx and *sqlx.Tx. Add is meant to run inside
// the transaction that produced the event.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Add inserts an unread notification for userID. An empty link is stored
// as NULL.
func Add(ctx context.Context, q Execer, userID int64, message, link string) error {
	nullLink := sql.NullString{String: link, Valid: link != ""}

	query := `
		INSERT INTO notifications (user_id, message, link, is_read)
		VALUES (?, ?, ?, 0)`
	if _, err := q.ExecContext(ctx, query, userID, message, nullLink); err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// List returns a user's notifications, unread and newest first.
func List(ctx context.Context, db *sqlx.DB, userID int64, limit int) ([]models.Notification, error) {
	out := []models.Notification{}
	query := `
		SELECT id, user_id, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY is_read ASC, created_at DESC
		LIMIT ?`
	if err := db.SelectContext(ctx, &out, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead flags one notification as read. It reports false when the
// notification does not exist or belongs to someone else.
func MarkRead(ctx context.Context, db *sqlx.DB, userID, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
