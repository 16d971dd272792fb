package app

import (
	"testing"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "STORE", "DB_DSN", "REDIS_URL", "JWT_SECRET",
		"BOOKING_MAX_ATTEMPTS", "STORE_TIMEOUT", "STATUS_SWEEP_INTERVAL", "NOTIFY_TOPIC",
	} {
		t.Setenv(key, "")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, displayVersion, err := ParseConfig([]string{"-db-dsn", "postgres://localhost/booking", "-jwt-secret", "s3cret"})
	require.NoError(t, err)

	assert.False(t, displayVersion)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, booking.DefaultTopic, cfg.Notify.Topic)
	assert.Equal(t, booking.DefaultMaxAttempts, cfg.Booking.MaxAttempts)
	assert.Equal(t, booking.DefaultStoreTimeout, cfg.Booking.StoreTimeout)
	assert.Zero(t, cfg.Booking.StatusSweepInterval)
}

func TestParseConfigReadsEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORE", StoreRedis)
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STATUS_SWEEP_INTERVAL", "30s")
	t.Setenv("PORT", "9090")

	cfg, _, err := ParseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "localhost:6379", cfg.Redis.URL)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Second, cfg.Booking.StatusSweepInterval)
	assert.Equal(t, 9090, cfg.Port)
}

func TestParseConfigFlagsOverrideEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, _, err := ParseConfig([]string{"-store", StoreMemory, "-jwt-secret", "from-flag", "-booking-max-attempts", "7"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.JWT.Secret)
	assert.Equal(t, 7, cfg.Booking.MaxAttempts)
}

func TestParseConfigVersionSkipsValidation(t *testing.T) {
	clearConfigEnv(t)

	_, displayVersion, err := ParseConfig([]string{"-version"})
	require.NoError(t, err)
	assert.True(t, displayVersion)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "postgres without dsn",
			args:    []string{"-jwt-secret", "s"},
			wantErr: "-db-dsn is required",
		},
		{
			name:    "redis without address",
			args:    []string{"-store", StoreRedis, "-jwt-secret", "s"},
			wantErr: "-redis-url is required",
		},
		{
			name:    "unknown store",
			args:    []string{"-store", "mongo", "-jwt-secret", "s"},
			wantErr: `unknown store "mongo"`,
		},
		{
			name:    "missing jwt secret",
			args:    []string{"-store", StoreMemory},
			wantErr: "-jwt-secret is required",
		},
		{
			name:    "no attempts",
			args:    []string{"-store", StoreMemory, "-jwt-secret", "s", "-booking-max-attempts", "0"},
			wantErr: "-booking-max-attempts must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)

			_, _, err := ParseConfig(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
