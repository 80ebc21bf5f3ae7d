package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendSupabase = "supabase"
	BackendRedis    = "redis"
)

type Config struct {
	DataFile  string          `yaml:"data_file"`
	Remote    RemoteConfig    `yaml:"remote"`
	Redis     RedisConfig     `yaml:"redis"`
	Generator GeneratorConfig `yaml:"generator"`
	Report    ReportConfig    `yaml:"report"`
	Log       LogConfig       `yaml:"log"`
}

// RemoteConfig selects and configures the blob store the data file is
// downloaded from.
type RemoteConfig struct {
	Backend     string        `yaml:"backend"`
	SupabaseURL string        `yaml:"supabase_url"`
	SupabaseKey string        `yaml:"supabase_key"`
	Bucket      string        `yaml:"bucket"`
	ObjectKey   string        `yaml:"object_key"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Enabled reports whether every connection parameter of the selected
// backend is present. A disabled remote is not an error.
func (r RemoteConfig) Enabled(redisCfg RedisConfig) bool {
	switch r.Backend {
	case BackendSupabase:
		return r.SupabaseURL != "" && r.SupabaseKey != ""
	case BackendRedis:
		return redisCfg.Addr != ""
	default:
		return false
	}
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GeneratorConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type ReportConfig struct {
	// Interval re-runs the pipeline periodically; zero runs it once.
	Interval time.Duration `yaml:"interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() *Config {
	return &Config{
		DataFile: "IOT-temp.csv",
		Remote: RemoteConfig{
			Backend:   BackendSupabase,
			Bucket:    "tempiot",
			ObjectKey: "IOT-temp.csv",
			Timeout:   15 * time.Second,
		},
		Generator: GeneratorConfig{
			Interval: 60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := defaults()

	if path := os.Getenv("MONITOR_CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	config.DataFile = getEnv("DATA_FILE", config.DataFile)
	config.Remote = RemoteConfig{
		Backend:     strings.ToLower(getEnv("REMOTE_BACKEND", config.Remote.Backend)),
		SupabaseURL: strings.TrimRight(getEnv("NEXT_PUBLIC_SUPABASE_URL", config.Remote.SupabaseURL), "/"),
		SupabaseKey: getEnv("NEXT_PUBLIC_SUPABASE_ANON_KEY", config.Remote.SupabaseKey),
		Bucket:      getEnv("STORAGE_BUCKET", config.Remote.Bucket),
		ObjectKey:   getEnv("STORAGE_OBJECT_KEY", config.Remote.ObjectKey),
		Timeout:     getEnvAsDuration("REMOTE_TIMEOUT", config.Remote.Timeout),
	}
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", config.Redis.Addr),
		Password: getEnv("REDIS_PASSWORD", config.Redis.Password),
		DB:       getEnvAsInt("REDIS_DB", config.Redis.DB),
	}
	config.Generator.Interval = getEnvAsDuration("GENERATOR_INTERVAL", config.Generator.Interval)
	config.Report.Interval = getEnvAsDuration("REPORT_INTERVAL", config.Report.Interval)
	config.Log = LogConfig{
		Level:  strings.ToLower(getEnv("LOG_LEVEL", config.Log.Level)),
		Format: strings.ToLower(getEnv("LOG_FORMAT", config.Log.Format)),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data file path must not be empty")
	}
	switch c.Remote.Backend {
	case BackendSupabase, BackendRedis:
	default:
		return fmt.Errorf("unknown remote backend: %s (expected %s or %s)",
			c.Remote.Backend, BackendSupabase, BackendRedis)
	}
	if c.Generator.Interval <= 0 {
		return fmt.Errorf("generator interval must be positive, got %s", c.Generator.Interval)
	}
	if c.Report.Interval < 0 {
		return fmt.Errorf("report interval must not be negative, got %s", c.Report.Interval)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
