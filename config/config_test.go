package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "peony-api", cfg.AppName)
	assert.Equal(t, "it", cfg.DefaultLocale)
	assert.Equal(t, []string{"it", "en"}, cfg.SupportedLocales)
	assert.Equal(t, 24*time.Hour, cfg.GeocodeCacheTTL)
	assert.Equal(t, 24, cfg.ShopDefaultPerPage)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("SHOP_MAX_PER_PAGE=48\nKAFKA_BROKERS= a:9092, b:9092 ,\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SHOP_MAX_PER_PAGE")
		os.Unsetenv("KAFKA_BROKERS")
	})

	cfg, err := Load(file, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 48, cfg.ShopMaxPerPage)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokerList())
}

func TestLoadBindsEnvironment(t *testing.T) {
	t.Setenv("GEOCODE_RATE_PER_SECOND", "2")
	t.Setenv("BOOKING_LOCK_TTL", "30s")
	t.Setenv("SUPPORTED_LOCALES", "it,en,fr")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.GeocodeRatePerSecond)
	assert.Equal(t, 30*time.Second, cfg.BookingLockTTL)
	assert.Equal(t, []string{"it", "en", "fr"}, cfg.SupportedLocales)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{DatabaseHost: "db", DatabasePort: "5432", DatabaseUserName: "u", DatabasePassword: "p", DatabaseName: "peony", DatabaseSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=peony sslmode=disable", cfg.DatabaseDSN())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{BookingTimezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}
