package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN_PRIMARY", "user:pass@tcp(127.0.0.1:3306)/mintverse?parseTime=true")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Admin.Enabled())

	fee, err := cfg.Oracle.Fee()
	require.NoError(t, err)
	assert.Equal(t, "400", fee.String())
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("DB_DSN_PRIMARY", "dsn")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidatePartialAdmin(t *testing.T) {
	cfg := &Config{
		Auth:   AuthConfig{JWTSecret: "x"},
		Oracle: OracleConfig{USDFee: "400"},
		Admin:  AdminConfig{Email: "admin@example.com"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Admin = AdminConfig{Name: "Admin", Email: "admin@example.com", Password: "Secret#123"}
	assert.NoError(t, cfg.Validate())
}

func TestValidateFee(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "x"}, Oracle: OracleConfig{USDFee: "0"}}
	assert.Error(t, cfg.Validate())

	cfg.Oracle.USDFee = "abc"
	assert.Error(t, cfg.Validate())
}
