package database

import (
	"context"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// EnsureAdmin creates the configured administrator when no account with
// that email exists yet. An existing account is left as it is.
func EnsureAdmin(ctx context.Context, db *sqlx.DB, cfg config.AdminConfig, log *logrus.Entry) error {
	if !cfg.Enabled() {
		return nil
	}

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", cfg.Email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin account: %w", err)
	}
	if exists {
		return nil
	}

	var password models.Password
	if err := password.Set(cfg.Password); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	query := `
		INSERT INTO users (name, email, password_hash, role, is_email_verified)
		VALUES (?, ?, ?, ?, 1)`
	if _, err := db.ExecContext(ctx, query, cfg.Name, cfg.Email, password.Hash, models.RoleAdmin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	log.WithField("email", cfg.Email).Info("bootstrap administrator created")
	return nil
}
