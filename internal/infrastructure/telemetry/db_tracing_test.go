package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTracingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := newTracingTestDB(t)

	err := RegisterDBTracing(db, DBTracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, db.Callback().Query().Get("otel_timing:before_query"))
}

func TestRegisterDBTracing_Enabled(t *testing.T) {
	db := newTracingTestDB(t)

	err := RegisterDBTracing(db, DBTracingConfig{
		Enabled:            true,
		SlowQueryThreshold: 200 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, db.Callback().Query().Get("otel_timing:before_query"))
	assert.NotNil(t, db.Callback().Query().Get("otel_timing:after_query"))
	assert.NotNil(t, db.Callback().Raw().Get("otel_timing:after_raw"))

	// Callbacks must not disturb statement execution
	setupRecorder(t)
	require.NoError(t, db.Exec("CREATE TABLE tracing_sample (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("INSERT INTO tracing_sample (id) VALUES (1)").Error)

	var count int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM tracing_sample").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}
