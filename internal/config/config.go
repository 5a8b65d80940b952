package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Travel     TravelConfig     `yaml:"travel"`
	Services   []models.Service `yaml:"services"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
	HealthCheckPort   int    `yaml:"health_check_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

// APIClientKey maps an API key to a tenant organization and its permissions.
type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	OrgID       string   `yaml:"org_id"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// SchedulingConfig tunes slot generation and booking validation.
type SchedulingConfig struct {
	SlotGranularityMinutes int `yaml:"slot_granularity_minutes"`
	TravelBufferMinutes    int `yaml:"travel_buffer_minutes"`
	MaxBookingDays         int `yaml:"max_booking_days"`
}

// TravelConfig points at the external travel time matrix provider.
type TravelConfig struct {
	ProviderURL     string `yaml:"provider_url"`
	APIKey          string `yaml:"api_key"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	GoogleCredentialsFile string `yaml:"credentials_file"`
	ScheduleSpreadsheetID string `yaml:"schedule_spreadsheet_id"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; when present its values feed ${VAR} expansion below.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Scheduling.SlotGranularityMinutes < 5 || c.Scheduling.SlotGranularityMinutes > 120 {
		return fmt.Errorf("slot granularity %d out of range [5, 120]", c.Scheduling.SlotGranularityMinutes)
	}
	if c.Scheduling.TravelBufferMinutes < 0 {
		return errors.New("travel buffer cannot be negative")
	}

	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) > 0 {
		for _, key := range c.API.Auth.APIKeys {
			if key.OrgID == "" {
				return fmt.Errorf("api key %q has no org_id", key.Name)
			}
		}
	}

	return ValidateServices(c.Services)
}

func ValidateServices(services []models.Service) error {
	seen := make(map[string]bool)
	for _, svc := range services {
		if svc.ID == "" {
			return fmt.Errorf("service %q has empty id", svc.Name)
		}
		if seen[svc.ID] {
			return fmt.Errorf("duplicate service id found: %s", svc.ID)
		}
		seen[svc.ID] = true
		if svc.DurationMinutes <= 0 {
			return fmt.Errorf("service %s has invalid duration %d", svc.ID, svc.DurationMinutes)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = models.RateLimitRPS
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = int(c.API.RateLimit.RPS) * 2
	}

	if c.Scheduling.SlotGranularityMinutes == 0 {
		c.Scheduling.SlotGranularityMinutes = models.DefaultSlotGranularityMinutes
	}
	if c.Scheduling.TravelBufferMinutes == 0 {
		c.Scheduling.TravelBufferMinutes = models.DefaultTravelBufferMinutes
	}
	if c.Scheduling.MaxBookingDays == 0 {
		c.Scheduling.MaxBookingDays = models.DefaultMaxBookingDays
	}

	if c.Travel.TimeoutSeconds == 0 {
		c.Travel.TimeoutSeconds = 5
	}
	if c.Travel.CacheTTLSeconds == 0 {
		c.Travel.CacheTTLSeconds = models.TravelCacheTTL
	}
}
