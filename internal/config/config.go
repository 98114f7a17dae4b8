package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bonesdao/onboarding/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration.
// An empty URL disables event publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ChainConfig describes the ledger network transfers are made on
type ChainConfig struct {
	ChainID      domain.Chain `mapstructure:"chain_id"`
	Name         string       `mapstructure:"name"`
	RPCURL       string       `mapstructure:"rpc_url"`
	ExplorerURL  string       `mapstructure:"explorer_url"`
	NativeSymbol string       `mapstructure:"native_symbol"`
	TokenAddress string       `mapstructure:"token_address"`
	TokenSymbol  string       `mapstructure:"token_symbol"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// AllowedOrigins for CORS; empty allows all
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// TrustedProxies are the IPs or CIDRs whose X-Forwarded-For is honored; empty trusts none
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// AuthConfig holds credential signing configuration
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// OnboardingConfig holds submission rules
type OnboardingConfig struct {
	// Referrers restricts accepted referrers when non-empty
	Referrers []string `mapstructure:"referrers"`
}

// RouteLimitConfig bounds one open route per client
type RouteLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// RateLimitConfig holds per-client limits for the open endpoints.
// An empty RedisAddr keeps counters in process.
type RateLimitConfig struct {
	Enabled       bool                        `mapstructure:"enabled"`
	RedisAddr     string                      `mapstructure:"redis_addr"`
	RedisPassword string                      `mapstructure:"redis_password"`
	RedisDB       int                         `mapstructure:"redis_db"`
	KeyPrefix     string                      `mapstructure:"key_prefix"`
	Routes        map[string]RouteLimitConfig `mapstructure:"routes"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// DisbursementConfig holds transfer confirmation settings
type DisbursementConfig struct {
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
	PollInterval        time.Duration `mapstructure:"poll_interval"`
	WatchInterval       time.Duration `mapstructure:"watch_interval"`
}

// APIClientConfig holds how the disbursement CLI reaches the API server
type APIClientConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PendingSweeperConfig holds configuration for resolving unconfirmed transfers
type PendingSweeperConfig struct {
	BatchSize int           `mapstructure:"batch_size"`
	Interval  time.Duration `mapstructure:"interval"`
	// GiveUpAfter stops checking transfers whose receipt never appears
	GiveUpAfter time.Duration `mapstructure:"give_up_after"`
	Worker      WorkerConfig  `mapstructure:"worker"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Onboarding OnboardingConfig `mapstructure:"onboarding"`
	Chain      ChainConfig      `mapstructure:"chain"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig     `mapstructure:",squash"`
	Database       DatabaseConfig       `mapstructure:"database"`
	NATS           NATSConfig           `mapstructure:"nats"`
	Chain          ChainConfig          `mapstructure:"chain"`
	PendingSweeper PendingSweeperConfig `mapstructure:"pending_sweeper"`
}

// DisburseConfig holds configuration for the disbursement CLI
type DisburseConfig struct {
	BaseConfig   `mapstructure:",squash"`
	Chain        ChainConfig        `mapstructure:"chain"`
	Disbursement DisbursementConfig `mapstructure:"disbursement"`
	API          APIClientConfig    `mapstructure:"api"`
	// SignerURL is the JSON-RPC endpoint of the operator's signer
	SignerURL string `mapstructure:"signer_url"`
}

// AdminConfig holds configuration for the admin CLI
type AdminConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	Auth       AuthConfig     `mapstructure:"auth"`
}

// setCommonDefaults sets defaults shared by every binary
func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "ONBOARDING_EVENTS")
	v.SetDefault("auth.access_token_ttl", "1h")
	v.SetDefault("auth.refresh_token_ttl", "168h")
	v.SetDefault("chain.chain_id", string(domain.ChainPlatONMainnet))
	v.SetDefault("chain.name", "PlatON Main Network")
	v.SetDefault("chain.rpc_url", "https://openapi2.platon.network/rpc")
	v.SetDefault("chain.explorer_url", "https://scan.platon.network/")
	v.SetDefault("chain.native_symbol", "LAT")
	v.SetDefault("chain.token_symbol", "USDT")
}

// readConfig reads the config file, tolerating its absence
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// validateDatabase checks the required database fields
func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Host == "" {
		return errors.New("database.host is required")
	}
	if cfg.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

// validateChain checks the configured ledger network
func validateChain(cfg ChainConfig) error {
	if !domain.IsValidChain(cfg.ChainID) {
		return fmt.Errorf("chain.chain_id %q is not a valid eip155 chain", cfg.ChainID)
	}
	if cfg.TokenAddress != "" && !domain.IsValidAddress(cfg.TokenAddress) {
		return fmt.Errorf("chain.token_address %q is not a valid address", cfg.TokenAddress)
	}
	return nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	setCommonDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("nats.connection_name", "onboarding-api")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.key_prefix", "onboarding:limiter:")
	v.SetDefault("rate_limit.routes", map[string]interface{}{
		"submit": map[string]interface{}{"requests_per_minute": 5, "burst": 3},
		"status": map[string]interface{}{"requests_per_minute": 60, "burst": 20},
		"login":  map[string]interface{}{"requests_per_minute": 10, "burst": 5},
	})

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if err := validateChain(cfg.Chain); err != nil {
		return nil, err
	}
	for route, limit := range cfg.RateLimit.Routes {
		if limit.RequestsPerMinute <= 0 {
			return nil, fmt.Errorf("rate_limit.routes.%s.requests_per_minute must be positive", route)
		}
	}
	for _, proxy := range cfg.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return nil, fmt.Errorf("server.trusted_proxies: %q is not an IP or CIDR", proxy)
		}
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	setCommonDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.connection_name", "onboarding-sweeper")
	v.SetDefault("pending_sweeper.batch_size", 50)
	v.SetDefault("pending_sweeper.interval", "30s")
	v.SetDefault("pending_sweeper.give_up_after", "24h")
	v.SetDefault("pending_sweeper.worker.pool_size", 10)
	v.SetDefault("pending_sweeper.worker.queue_size", 100)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}
	if err := validateChain(cfg.Chain); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDisburseConfig loads configuration for the disbursement CLI
func LoadDisburseConfig(configFile string, envPath string) (*DisburseConfig, error) {
	v := configureViper("disburse", configFile, envPath)

	setCommonDefaults(v)
	v.SetDefault("disbursement.confirmation_timeout", "2m")
	v.SetDefault("disbursement.poll_interval", "2s")
	v.SetDefault("disbursement.watch_interval", "3s")
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("signer_url", "http://localhost:8545")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg DisburseConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateChain(cfg.Chain); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadAdminConfig loads configuration for the admin CLI
func LoadAdminConfig(configFile string, envPath string) (*AdminConfig, error) {
	v := configureViper("admin", configFile, envPath)

	setCommonDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg AdminConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sweeper/, cmd/api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("ONBOARDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Chain
		"chain.chain_id",
		"chain.name",
		"chain.rpc_url",
		"chain.explorer_url",
		"chain.native_symbol",
		"chain.token_address",
		"chain.token_symbol",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		"server.trusted_proxies",
		// Auth
		"auth.jwt_secret",
		"auth.access_token_ttl",
		"auth.refresh_token_ttl",
		// Onboarding
		"onboarding.referrers",
		// Rate limit
		"rate_limit.enabled",
		"rate_limit.redis_addr",
		"rate_limit.redis_password",
		"rate_limit.redis_db",
		"rate_limit.key_prefix",
		// Disbursement
		"disbursement.confirmation_timeout",
		"disbursement.poll_interval",
		"disbursement.watch_interval",
		"signer_url",
		// API client
		"api.base_url",
		"api.username",
		"api.password",
		"api.timeout",
		// Pending sweeper
		"pending_sweeper.batch_size",
		"pending_sweeper.interval",
		"pending_sweeper.give_up_after",
		"pending_sweeper.worker.pool_size",
		"pending_sweeper.worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
