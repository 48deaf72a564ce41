package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/feedback-backend/internal/cache"
	"github.com/yungbote/feedback-backend/internal/data/db"
	"github.com/yungbote/feedback-backend/internal/platform/envutil"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store/bucket"
	"github.com/yungbote/feedback-backend/internal/store/csvfile"
	"github.com/yungbote/feedback-backend/internal/store/sheets"
)

const (
	BackendCSV    = "csv"
	BackendSheets = "sheets"
	BackendBucket = "bucket"
	BackendSQL    = "sql"

	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type StorageConfig struct {
	Backend string `yaml:"backend"`

	CSVPath string `yaml:"csv_path"`

	SpreadsheetID    string `yaml:"sheets_spreadsheet_id"`
	SpreadsheetTitle string `yaml:"sheets_spreadsheet_title"`
	Worksheet        string `yaml:"sheets_worksheet"`

	BucketName          string `yaml:"bucket_name"`
	BucketObject        string `yaml:"bucket_object"`
	ObjectStorageMode   string `yaml:"object_storage_mode"`
	StorageEmulatorHost string `yaml:"storage_emulator_host"`

	SQLDriver string `yaml:"sql_driver"`
	SQLDSN    string `yaml:"sql_dsn"`
}

type LLMConfig struct {
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisKey      string        `yaml:"redis_key"`
}

type OtelSettings struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Port        string `yaml:"port"`
	LogMode     string `yaml:"log_mode"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`

	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Otel    OtelSettings  `yaml:"otel"`

	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
	MetricsEnabled   bool     `yaml:"metrics_enabled"`
}

func DefaultConfig() Config {
	return Config{
		Port:        "8080",
		LogMode:     "development",
		ServiceName: "feedback",
		Storage: StorageConfig{
			Backend:          BackendCSV,
			CSVPath:          csvfile.DefaultPath,
			SpreadsheetTitle: sheets.DefaultSpreadsheetTitle,
			Worksheet:        sheets.DefaultWorksheet,
			BucketObject:     bucket.DefaultObject,
			SQLDriver:        db.DriverSQLite,
			SQLDSN:           db.DefaultSQLiteDSN,
		},
		LLM: LLMConfig{Provider: ProviderGroq},
		Cache: CacheConfig{
			Backend:  CacheMemory,
			TTL:      cache.DefaultTTL,
			RedisKey: cache.DefaultRedisKey,
		},
		Otel:           OtelSettings{SampleRatio: 1},
		MetricsEnabled: true,
	}
}

// LoadConfig layers defaults, the optional FEEDBACK_CONFIG YAML file and
// environment variables, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()
	if path := envutil.String("FEEDBACK_CONFIG", ""); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}
	applyEnv(&cfg)
	cfg.normalize()
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)

	s := &cfg.Storage
	s.Backend = envutil.String("STORAGE_BACKEND", s.Backend)
	s.CSVPath = envutil.String("CSV_PATH", s.CSVPath)
	s.SpreadsheetID = envutil.String("SHEETS_SPREADSHEET_ID", s.SpreadsheetID)
	s.SpreadsheetTitle = envutil.String("SHEETS_SPREADSHEET_TITLE", s.SpreadsheetTitle)
	s.Worksheet = envutil.String("SHEETS_WORKSHEET", s.Worksheet)
	s.BucketName = envutil.String("BUCKET_NAME", s.BucketName)
	s.BucketObject = envutil.String("BUCKET_OBJECT", s.BucketObject)
	s.ObjectStorageMode = envutil.String("OBJECT_STORAGE_MODE", s.ObjectStorageMode)
	s.StorageEmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", s.StorageEmulatorHost)
	s.SQLDriver = envutil.String("SQL_DRIVER", s.SQLDriver)
	s.SQLDSN = envutil.String("SQL_DSN", s.SQLDSN)

	l := &cfg.LLM
	l.Provider = envutil.String("LLM_PROVIDER", l.Provider)
	l.Model = envutil.String("LLM_MODEL", l.Model)
	l.BaseURL = envutil.String("LLM_BASE_URL", l.BaseURL)
	l.Timeout = envutil.Duration("LLM_TIMEOUT", l.Timeout)
	if key := envutil.First("LLM_API_KEY", providerKeyEnv(l.Provider)); key != "" {
		l.APIKey = key
	}

	c := &cfg.Cache
	c.Backend = envutil.String("CACHE_BACKEND", c.Backend)
	c.TTL = envutil.Duration("DASHBOARD_CACHE_TTL", c.TTL)
	c.RedisAddr = envutil.String("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = envutil.String("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = envutil.Int("REDIS_DB", c.RedisDB)
	c.RedisKey = envutil.String("REDIS_KEY", c.RedisKey)

	o := &cfg.Otel
	o.Enabled = envutil.Bool("OTEL_ENABLED", o.Enabled)
	o.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", o.Endpoint)
	o.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", o.Headers)
	o.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", o.Insecure)
	if v := envutil.String("OTEL_SAMPLER_RATIO", ""); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			o.SampleRatio = ratio
		}
	}

	if origins := envutil.List("CORS_ALLOW_ORIGINS"); len(origins) > 0 {
		cfg.CORSAllowOrigins = origins
	}
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)
}

func providerKeyEnv(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Storage.SQLDriver = strings.ToLower(strings.TrimSpace(c.Storage.SQLDriver))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderGroq
	}
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
}

// Address is the listen address for the HTTP server.
func (c Config) Address() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
