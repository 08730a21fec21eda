package config

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORTAL_DATABASE_URL", "")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, "order_timeline", cfg.Audit.Exchange)
	assert.Equal(t, 256, cfg.Audit.Buffer)
	assert.Equal(t, 14, cfg.Orders.InvoiceDueDays)
	assert.True(t, cfg.Orders.DefaultVatRate.Equal(decimal.NewFromInt(25)))
	assert.False(t, cfg.IsProduction())
}

func TestLoad_LegacyAndPrefixedEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://legacy")
	t.Setenv("PORTAL_HTTP_PORT", "9090")
	t.Setenv("PORTAL_ORDERS_INVOICE_DUE_DAYS", "30")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "postgres://legacy", cfg.Database.URL)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, 30, cfg.Orders.InvoiceDueDays)
}

func TestLoad_PrefixedWinsOverLegacy(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://legacy")
	t.Setenv("PORTAL_DATABASE_URL", "postgres://prefixed")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "postgres://prefixed", cfg.Database.URL)
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := &Config{
		App:   AppConfig{Env: "production"},
		Audit: AuditConfig{Buffer: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidVatRate(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORTAL_ORDERS_DEFAULT_VAT_RATE", "abc")

	_, err := load(viper.New())
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
