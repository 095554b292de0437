package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "api", cfg.Invoice.Mode)
	assert.Equal(t, int64(10<<20), cfg.Registration.MaxUploadSize)
	assert.Equal(t, "invoices", cfg.Invoice.Schema.InvoiceTable)
	assert.Equal(t, "fn_student_outstanding", cfg.Invoice.Schema.OutstandingFunction)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("INVOICE_MODE", "mysql_ssh")
	t.Setenv("INVOICE_SSH_PORT", "2222")
	t.Setenv("INVOICE_NUMBER_COLUMN", "InvoiceNo")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mysql_ssh", cfg.Invoice.Mode)
	assert.Equal(t, 2222, cfg.Invoice.SSH.Port)
	assert.Equal(t, "InvoiceNo", cfg.Invoice.Schema.NumberColumn)
}

func TestLoadConfigFromYAMLFile(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  port: \"8100\"\ninvoice:\n  mode: mysql_ssh\n  ssh:\n    host: legacy.example.com\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "8100", cfg.Server.Port)
	assert.Equal(t, "legacy.example.com", cfg.Invoice.SSH.Host)
}

func TestLoadConfigRejectsBadSettings(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := LoadConfig(missing)
	require.Error(t, err, "JWT secret must be required")

	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("INVOICE_MODE", "carrier-pigeon")
	_, err = LoadConfig(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid invoice mode")
}

func TestHasSSHConfig(t *testing.T) {
	var ic InvoiceConfig
	assert.False(t, ic.HasSSHConfig())

	ic.SSH.Host = "legacy.example.com"
	ic.SSH.User = "tadika"
	ic.SSH.KeyPath = "/keys/id_rsa"
	assert.False(t, ic.HasSSHConfig(), "MySQL params still missing")

	ic.MySQL.Host = "127.0.0.1"
	ic.MySQL.User = "finance"
	ic.MySQL.DBName = "legacy_finance"
	assert.True(t, ic.HasSSHConfig())
}
