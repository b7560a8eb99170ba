package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Log           LogConfig
	HTTP          HTTPConfig
	Conversion    ConversionConfig
	WhatsApp      WhatsAppConfig
	Gemini        GeminiConfig
	Transcription TranscriptionConfig
	Redis         RedisConfig
	Storage       StorageConfig
	PDF           PDFConfig
	Telemetry     TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name       string
	Env        string
	Port       string
	APIVersion string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxBodySize      int64
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// ConversionConfig holds spreadsheet conversion settings
type ConversionConfig struct {
	DefaultUser   string // stamped when the form omits usuario_responsavel (CLI only)
	DefaultFunnel string
	MaxRows       int // 0 = unlimited
}

// WhatsAppConfig holds the RapidAPI WhatsApp validation settings
type WhatsAppConfig struct {
	URL           string
	APIKey        string
	Host          string
	Timeout       time.Duration
	Concurrency   int
	RatePerSecond float64
	CacheTTL      time.Duration
}

// GeminiConfig holds the generative-AI transcription model settings
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// TranscriptionConfig holds the call-recording pipeline settings
type TranscriptionConfig struct {
	Concurrency     int
	MinDuration     time.Duration
	ShortThreshold  int // transcripts with fewer characters are summarized instead of printed
	TempDir         string
	DownloadTimeout time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// StorageConfig holds S3-compatible object storage settings for s3:// recording links
type StorageConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// PDFConfig holds the headless Chrome renderer settings
type PDFConfig struct {
	ChromePath string
	Timeout    time.Duration
}

// TelemetryConfig holds OpenTelemetry exporter settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	Insecure          bool
	SamplingRatio     float64
	MetricsInterval   time.Duration
}

// Load loads configuration from a .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CENTRAL_ prefix (e.g., CENTRAL_GEMINI_API_KEY)
// 2. Legacy variable names (GEMINI_API_KEY, NEXT_PUBLIC_RAPIDAPI_*)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/central")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CENTRAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("gemini.api_key", "CENTRAL_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("whatsapp.api_key", "CENTRAL_WHATSAPP_API_KEY", "NEXT_PUBLIC_RAPIDAPI_KEY")
	_ = v.BindEnv("whatsapp.host", "CENTRAL_WHATSAPP_HOST", "NEXT_PUBLIC_RAPIDAPI_HOST")
	_ = v.BindEnv("whatsapp.url", "CENTRAL_WHATSAPP_URL", "NEXT_PUBLIC_RAPIDAPI_URL")
	_ = v.BindEnv("app.port", "CENTRAL_APP_PORT", "PORT")

	cfg := &Config{
		App: AppConfig{
			Name:       v.GetString("app.name"),
			Env:        v.GetString("app.env"),
			Port:       v.GetString("app.port"),
			APIVersion: v.GetString("app.api_version"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			RateLimitEnabled: v.GetBool("http.rate_limit_enabled"),
			RateLimitRPS:     v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:   v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Conversion: ConversionConfig{
			DefaultUser:   v.GetString("conversion.default_user"),
			DefaultFunnel: v.GetString("conversion.default_funnel"),
			MaxRows:       v.GetInt("conversion.max_rows"),
		},
		WhatsApp: WhatsAppConfig{
			URL:           v.GetString("whatsapp.url"),
			APIKey:        v.GetString("whatsapp.api_key"),
			Host:          v.GetString("whatsapp.host"),
			Timeout:       v.GetDuration("whatsapp.timeout"),
			Concurrency:   v.GetInt("whatsapp.concurrency"),
			RatePerSecond: v.GetFloat64("whatsapp.rate_per_second"),
			CacheTTL:      v.GetDuration("whatsapp.cache_ttl"),
		},
		Gemini: GeminiConfig{
			APIKey:  v.GetString("gemini.api_key"),
			Model:   v.GetString("gemini.model"),
			Timeout: v.GetDuration("gemini.timeout"),
		},
		Transcription: TranscriptionConfig{
			Concurrency:     v.GetInt("transcription.concurrency"),
			MinDuration:     v.GetDuration("transcription.min_duration"),
			ShortThreshold:  v.GetInt("transcription.short_threshold"),
			TempDir:         v.GetString("transcription.temp_dir"),
			DownloadTimeout: v.GetDuration("transcription.download_timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
		},
		PDF: PDFConfig{
			ChromePath: v.GetString("pdf.chrome_path"),
			Timeout:    v.GetDuration("pdf.timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "central-dibaisales"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.APIVersion == "" {
		cfg.App.APIVersion = "v1"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 60 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// transcription batches answer only after every recording is processed
		cfg.HTTP.WriteTimeout = 15 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 120 * time.Second
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 32 << 20
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 5
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 20
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{
			"https://centraldibaisales.netlify.app",
			"https://central-dibaisales.onrender.com",
			"http://localhost:3000",
		}
	}

	if cfg.WhatsApp.Timeout == 0 {
		cfg.WhatsApp.Timeout = 10 * time.Second
	}
	if cfg.WhatsApp.Concurrency == 0 {
		cfg.WhatsApp.Concurrency = 4
	}
	if cfg.WhatsApp.RatePerSecond == 0 {
		cfg.WhatsApp.RatePerSecond = 5
	}
	if cfg.WhatsApp.CacheTTL == 0 {
		cfg.WhatsApp.CacheTTL = 24 * time.Hour
	}

	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = 5 * time.Minute
	}

	if cfg.Transcription.Concurrency == 0 {
		cfg.Transcription.Concurrency = 2
	}
	if cfg.Transcription.MinDuration == 0 {
		cfg.Transcription.MinDuration = 30 * time.Second
	}
	if cfg.Transcription.ShortThreshold == 0 {
		cfg.Transcription.ShortThreshold = 100
	}
	if cfg.Transcription.DownloadTimeout == 0 {
		cfg.Transcription.DownloadTimeout = 30 * time.Second
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.PDF.Timeout == 0 {
		cfg.PDF.Timeout = 60 * time.Second
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.HTTP.MaxBodySize < 0 {
		return fmt.Errorf("http.max_body_size cannot be negative")
	}
	if c.Conversion.MaxRows < 0 {
		return fmt.Errorf("conversion.max_rows cannot be negative")
	}
	if c.WhatsApp.Concurrency < 1 {
		return fmt.Errorf("whatsapp.concurrency must be positive, got %d", c.WhatsApp.Concurrency)
	}
	if c.Transcription.Concurrency < 1 {
		return fmt.Errorf("transcription.concurrency must be positive, got %d", c.Transcription.Concurrency)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", c.Telemetry.SamplingRatio)
	}
	if c.Transcription.ShortThreshold < 0 {
		return fmt.Errorf("transcription.short_threshold cannot be negative")
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required in production")
		}
		if c.WhatsApp.URL == "" || c.WhatsApp.APIKey == "" {
			return fmt.Errorf("whatsapp.url and whatsapp.api_key are required in production")
		}
	}

	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
