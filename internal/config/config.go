package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Carrier   CarrierConfig   `yaml:"carrier"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// FirestoreConfig contains the orders collection connection settings
type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// CatalogConfig contains the PostgreSQL price catalog connection settings
type CatalogConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SendGridConfig contains transactional email settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

// CarrierConfig contains shipping label provider settings
type CarrierConfig struct {
	Mode    string `yaml:"mode"` // "mock" or "live"
	BaseURL string `yaml:"base_url"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	Issuer            string `yaml:"issuer"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// LifecycleConfig contains the day thresholds driving the reminder
// escalation and the re-offer auto-accept window
type LifecycleConfig struct {
	SevenDayReminderAfterDays   int `yaml:"seven_day_reminder_after_days"`
	FifteenDayReminderAfterDays int `yaml:"fifteen_day_reminder_after_days"`
	CancelAfterDays             int `yaml:"cancel_after_days"`
	AutoAcceptDays              int `yaml:"auto_accept_days"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SendSevenDayReminders   string `yaml:"send_seven_day_reminders"`
	SendFifteenDayReminders string `yaml:"send_fifteen_day_reminders"`
	CancelStaleOrders       string `yaml:"cancel_stale_orders"`
	AutoAcceptReoffers      string `yaml:"auto_accept_reoffers"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Firestore
	if val := os.Getenv("FIRESTORE_PROJECT_ID"); val != "" {
		c.Firestore.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
		c.Firestore.CredentialsFile = val
	}

	// Catalog database
	if val := os.Getenv("CATALOG_DB_HOST"); val != "" {
		c.Catalog.Host = val
	}
	if val := os.Getenv("CATALOG_DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Catalog.Port)
	}
	if val := os.Getenv("CATALOG_DB_USER"); val != "" {
		c.Catalog.User = val
	}
	if val := os.Getenv("CATALOG_DB_PASSWORD"); val != "" {
		c.Catalog.Password = val
	}
	if val := os.Getenv("CATALOG_DB_NAME"); val != "" {
		c.Catalog.Database = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// Carrier
	if val := os.Getenv("CARRIER_MODE"); val != "" {
		c.Carrier.Mode = val
	}
	if val := os.Getenv("CARRIER_BASE_URL"); val != "" {
		c.Carrier.BaseURL = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Firestore validation
	if c.Firestore.ProjectID == "" {
		return fmt.Errorf("firestore project id is required")
	}

	// Catalog validation
	if c.Catalog.Host == "" {
		return fmt.Errorf("catalog database host is required")
	}
	if c.Catalog.User == "" {
		return fmt.Errorf("catalog database user is required")
	}
	if c.Catalog.Database == "" {
		return fmt.Errorf("catalog database name is required")
	}
	if c.Catalog.SSLMode == "" {
		c.Catalog.SSLMode = "disable"
	}

	// SendGrid validation
	if c.SendGrid.APIKey == "" {
		return fmt.Errorf("sendgrid api key is required")
	}
	if c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from address is required")
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "Buyback Team"
	}

	// Carrier defaults
	if c.Carrier.Mode == "" {
		c.Carrier.Mode = "mock"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "buyback-backend"
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Lifecycle defaults
	if c.Lifecycle.SevenDayReminderAfterDays == 0 {
		c.Lifecycle.SevenDayReminderAfterDays = 7
	}
	if c.Lifecycle.FifteenDayReminderAfterDays == 0 {
		c.Lifecycle.FifteenDayReminderAfterDays = 15
	}
	if c.Lifecycle.CancelAfterDays == 0 {
		c.Lifecycle.CancelAfterDays = 21
	}
	if c.Lifecycle.AutoAcceptDays == 0 {
		c.Lifecycle.AutoAcceptDays = 7
	}

	// Scheduler defaults
	if c.Scheduler.SendSevenDayReminders == "" {
		c.Scheduler.SendSevenDayReminders = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.SendFifteenDayReminders == "" {
		c.Scheduler.SendFifteenDayReminders = "0 15 2 * * *" // 2:15 AM UTC
	}
	if c.Scheduler.CancelStaleOrders == "" {
		c.Scheduler.CancelStaleOrders = "0 30 2 * * *" // 2:30 AM UTC
	}
	if c.Scheduler.AutoAcceptReoffers == "" {
		c.Scheduler.AutoAcceptReoffers = "0 0 * * * *" // hourly
	}

	return nil
}

// GetCatalogConnectionString returns a PostgreSQL connection string for the
// price catalog
func (c *Config) GetCatalogConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Catalog.User,
		c.Catalog.Password,
		c.Catalog.Host,
		c.Catalog.Port,
		c.Catalog.Database,
		c.Catalog.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
