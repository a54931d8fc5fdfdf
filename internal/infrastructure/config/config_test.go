package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setProductionBase sets the minimum viable production environment.
// t.Setenv restores everything when the test finishes.
func setProductionBase(t *testing.T) {
	t.Helper()
	t.Setenv("INVOICE_APP_ENV", "production")
	t.Setenv("INVOICE_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
	t.Setenv("INVOICE_DATABASE_PASSWORD", "secure-password")
	t.Setenv("INVOICE_DATABASE_SSLMODE", "require")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "invoiceapp-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "invoiceapp", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 0, cfg.Sweep.Hour)
	assert.Equal(t, 10, cfg.Sweep.Minute)
	assert.Equal(t, 200, cfg.Sweep.BatchSize)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "cross-origin requests stay off until configured")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("INVOICE_APP_NAME", "test-app")
	t.Setenv("INVOICE_APP_PORT", "9000")
	t.Setenv("INVOICE_DATABASE_HOST", "testdb.local")
	t.Setenv("INVOICE_DATABASE_PORT", "5433")
	t.Setenv("INVOICE_DATABASE_USER", "testuser")
	t.Setenv("INVOICE_DATABASE_PASSWORD", "testpass")
	t.Setenv("INVOICE_DATABASE_DBNAME", "testdb")
	t.Setenv("INVOICE_DATABASE_SSLMODE", "require")
	t.Setenv("INVOICE_DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("INVOICE_DATABASE_MAX_IDLE_CONNS", "10")
	t.Setenv("INVOICE_SWEEP_HOUR", "3")
	t.Setenv("INVOICE_SWEEP_MINUTE", "30")
	t.Setenv("INVOICE_SWEEP_BATCH_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "testdb.local", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "testuser", cfg.Database.User)
	assert.Equal(t, "testpass", cfg.Database.Password)
	assert.Equal(t, "testdb", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 3, cfg.Sweep.Hour)
	assert.Equal(t, 30, cfg.Sweep.Minute)
	assert.Equal(t, 50, cfg.Sweep.BatchSize)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "idle conns above open conns",
			env:     map[string]string{"INVOICE_DATABASE_MAX_OPEN_CONNS": "10", "INVOICE_DATABASE_MAX_IDLE_CONNS": "20"},
			wantErr: "cannot exceed",
		},
		{
			name:    "explicit zero open conns",
			env:     map[string]string{"INVOICE_DATABASE_MAX_OPEN_CONNS": "0"},
			wantErr: "max_open_conns must be positive",
		},
		{
			name:    "negative idle conns",
			env:     map[string]string{"INVOICE_DATABASE_MAX_IDLE_CONNS": "-1"},
			wantErr: "max_idle_conns cannot be negative",
		},
		{
			name:    "sweep hour out of range",
			env:     map[string]string{"INVOICE_SWEEP_HOUR": "24"},
			wantErr: "sweep.hour must be between 0 and 23",
		},
		{
			name:    "sweep minute out of range",
			env:     map[string]string{"INVOICE_SWEEP_MINUTE": "60"},
			wantErr: "sweep.minute must be between 0 and 59",
		},
		{
			name:    "sampling ratio above one",
			env:     map[string]string{"INVOICE_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio must be between",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadProductionValidation(t *testing.T) {
	t.Run("accepts a complete production config", func(t *testing.T) {
		setProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires a JWT secret", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("INVOICE_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("rejects a short JWT secret", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("INVOICE_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires a database password", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("INVOICE_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("rejects disabled SSL", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("INVOICE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects a wildcard CORS origin", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("INVOICE_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins cannot be '*'")
	})

	t.Run("requires an SMTP host when sending is on", func(t *testing.T) {
		setProductionBase(t)
		t.Setenv("INVOICE_SMTP_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp.host is required")
	})
}

func TestDatabaseDSN(t *testing.T) {
	base := DatabaseConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "invoiceapp",
		DBName:  "invoices",
		SSLMode: "disable",
	}

	t.Run("assembles a postgres URL", func(t *testing.T) {
		cfg := base
		cfg.Password = "testpass"

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "invoiceapp")
		assert.Contains(t, dsn, "/invoices")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in the password", func(t *testing.T) {
		cfg := base
		cfg.Password = "pass@word#123"

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("tolerates an empty password", func(t *testing.T) {
		assert.NotEmpty(t, base.DSN())
	})
}
