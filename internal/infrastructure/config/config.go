package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Sweep     SweepConfig
	SMTP      SMTPConfig
	PDF       PDFConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string // Public base URL used in payment links and emails
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// SchedulerConfig holds background job scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// SweepConfig holds overdue sweep configuration.
// The sweep runs once per day at the configured local time and walks
// past-due SENT invoices in bounded batches.
type SweepConfig struct {
	Enabled   bool
	Hour      int
	Minute    int
	BatchSize int
}

// SMTPConfig holds outbound email settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Enabled  bool
}

// PDFConfig holds invoice document rendering settings
type PDFConfig struct {
	Enabled       bool
	ChromePath    string // Optional explicit Chrome/Chromium binary path
	RenderTimeout time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled            bool
	CollectorEndpoint  string // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio      float64
	ServiceName        string
	Insecure           bool // Plain-text collector connection, development only
	TraceQueries       bool // Emit spans for database statements
	SlowQueryThreshold time.Duration
}

// Load reads configuration with the following priority, highest first:
// environment variables with the INVOICE_ prefix (INVOICE_DATABASE_PASSWORD),
// then config.toml, then built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars carry it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:       loadApp(v),
		Database:  loadDatabase(v),
		JWT:       loadJWT(v),
		Log:       loadLog(v),
		HTTP:      loadHTTP(v),
		Scheduler: loadScheduler(v),
		Sweep:     loadSweep(v),
		SMTP:      loadSMTP(v),
		PDF:       loadPDF(v),
		Telemetry: loadTelemetry(v),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "invoiceapp-backend")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "invoiceapp")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.conn_max_idle_time", 30)

	v.SetDefault("jwt.access_token_expiration", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_expiration", 168*time.Hour)
	v.SetDefault("jwt.issuer", "invoiceapp-backend")
	v.SetDefault("jwt.max_refresh_count", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_header_bytes", 1<<20)
	v.SetDefault("http.max_body_size", 10<<20)
	// No default CORS origins: an empty list means no cross-origin
	// requests until explicitly configured
	v.SetDefault("http.cors_allow_methods", []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"})
	v.SetDefault("http.cors_allow_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("http.rate_limit_requests", 100)
	v.SetDefault("http.rate_limit_window", time.Minute)

	v.SetDefault("scheduler.max_concurrent_jobs", 3)
	v.SetDefault("scheduler.job_timeout", 30*time.Minute)
	v.SetDefault("scheduler.retry_attempts", 3)
	v.SetDefault("scheduler.retry_delay", 5*time.Minute)

	// Shortly after midnight, in bounded batches
	v.SetDefault("sweep.hour", 0)
	v.SetDefault("sweep.minute", 10)
	v.SetDefault("sweep.batch_size", 200)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "no-reply@invoiceapp.local")

	v.SetDefault("pdf.render_timeout", 30*time.Second)

	v.SetDefault("telemetry.collector_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.service_name", "invoiceapp-backend")
	v.SetDefault("telemetry.slow_query_threshold", 200*time.Millisecond)
}

func loadApp(v *viper.Viper) AppConfig {
	return AppConfig{
		Name:    v.GetString("app.name"),
		Env:     v.GetString("app.env"),
		Port:    v.GetString("app.port"),
		BaseURL: v.GetString("app.base_url"),
	}
}

func loadDatabase(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString("database.host"),
		Port:            v.GetInt("database.port"),
		User:            v.GetString("database.user"),
		Password:        v.GetString("database.password"),
		DBName:          v.GetString("database.dbname"),
		SSLMode:         v.GetString("database.sslmode"),
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
	}
}

func loadJWT(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                 v.GetString("jwt.secret"),
		AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
		RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
		Issuer:                 v.GetString("jwt.issuer"),
		RefreshSecret:          v.GetString("jwt.refresh_secret"),
		MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
	}
}

func loadLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func loadHTTP(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       v.GetDuration("http.read_timeout"),
		WriteTimeout:      v.GetDuration("http.write_timeout"),
		IdleTimeout:       v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
		MaxBodySize:       v.GetInt64("http.max_body_size"),
		CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests: v.GetInt("http.rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
	}
}

func loadScheduler(v *viper.Viper) SchedulerConfig {
	return SchedulerConfig{
		Enabled:           v.GetBool("scheduler.enabled"),
		MaxConcurrentJobs: v.GetInt("scheduler.max_concurrent_jobs"),
		JobTimeout:        v.GetDuration("scheduler.job_timeout"),
		RetryAttempts:     v.GetInt("scheduler.retry_attempts"),
		RetryDelay:        v.GetDuration("scheduler.retry_delay"),
	}
}

func loadSweep(v *viper.Viper) SweepConfig {
	return SweepConfig{
		Enabled:   v.GetBool("sweep.enabled"),
		Hour:      v.GetInt("sweep.hour"),
		Minute:    v.GetInt("sweep.minute"),
		BatchSize: v.GetInt("sweep.batch_size"),
	}
}

func loadSMTP(v *viper.Viper) SMTPConfig {
	return SMTPConfig{
		Host:     v.GetString("smtp.host"),
		Port:     v.GetInt("smtp.port"),
		Username: v.GetString("smtp.username"),
		Password: v.GetString("smtp.password"),
		From:     v.GetString("smtp.from"),
		Enabled:  v.GetBool("smtp.enabled"),
	}
}

func loadPDF(v *viper.Viper) PDFConfig {
	return PDFConfig{
		Enabled:       v.GetBool("pdf.enabled"),
		ChromePath:    v.GetString("pdf.chrome_path"),
		RenderTimeout: v.GetDuration("pdf.render_timeout"),
	}
}

func loadTelemetry(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:            v.GetBool("telemetry.enabled"),
		CollectorEndpoint:  v.GetString("telemetry.collector_endpoint"),
		SamplingRatio:      v.GetFloat64("telemetry.sampling_ratio"),
		ServiceName:        v.GetString("telemetry.service_name"),
		Insecure:           v.GetBool("telemetry.insecure"),
		TraceQueries:       v.GetBool("telemetry.trace_queries"),
		SlowQueryThreshold: v.GetDuration("telemetry.slow_query_threshold"),
	}
}

// validate rejects configurations that cannot run safely.
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Sweep.Hour < 0 || c.Sweep.Hour > 23 {
		return fmt.Errorf("sweep.hour must be between 0 and 23, got %d", c.Sweep.Hour)
	}
	if c.Sweep.Minute < 0 || c.Sweep.Minute > 59 {
		return fmt.Errorf("sweep.minute must be between 0 and 59, got %d", c.Sweep.Minute)
	}
	if c.Sweep.BatchSize < 0 {
		return fmt.Errorf("sweep.batch_size cannot be negative")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction holds the stricter rules that only apply outside
// development.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	if c.SMTP.Enabled && c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required when smtp is enabled in production")
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
