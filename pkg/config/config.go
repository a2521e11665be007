package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Recording RecordingConfig
	Assembly  AssemblyAIConfig
	OpenAI    OpenAIConfig
	Archive   ArchiveConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string `envconfig:"HOST" default:"0.0.0.0"`
	Port            string `envconfig:"PORT" default:"8080"`
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// StoreConfig holds sermon record store configuration. The store keeps
// the whole collection as one JSON blob under a single key.
type StoreConfig struct {
	Backend       string `envconfig:"STORE_BACKEND" default:"memory"` // "memory" or "redis"
	Key           string `envconfig:"STORE_KEY" default:"savedSermons"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// RecordingConfig holds audio capture configuration
type RecordingConfig struct {
	OutputDir   string        `envconfig:"RECORDING_DIR" default:"./recordings"`
	FFmpegPath  string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	InputFormat string        `envconfig:"RECORDING_INPUT_FORMAT" default:"pulse"`
	InputDevice string        `envconfig:"RECORDING_INPUT_DEVICE" default:"default"`
	SampleRate  int           `envconfig:"RECORDING_SAMPLE_RATE" default:"44100"`
	Channels    int           `envconfig:"RECORDING_CHANNELS" default:"1"`
	BitRate     int           `envconfig:"RECORDING_BIT_RATE" default:"128000"`
	StaleAfter  time.Duration `envconfig:"RECORDING_STALE_AFTER" default:"30m"`
}

// AssemblyAIConfig holds transcription vendor configuration
type AssemblyAIConfig struct {
	APIKey          string        `envconfig:"ASSEMBLYAI_API_KEY" default:""`
	BaseURL         string        `envconfig:"ASSEMBLYAI_BASE_URL" default:"https://api.assemblyai.com/v2"`
	PollInterval    time.Duration `envconfig:"ASSEMBLYAI_POLL_INTERVAL" default:"5s"`
	MaxPollAttempts int           `envconfig:"ASSEMBLYAI_MAX_POLL_ATTEMPTS" default:"60"`
	RequestTimeout  time.Duration `envconfig:"ASSEMBLYAI_REQUEST_TIMEOUT" default:"30s"`
	UploadTimeout   time.Duration `envconfig:"ASSEMBLYAI_UPLOAD_TIMEOUT" default:"5m"`
}

// OpenAIConfig holds summarization vendor configuration
type OpenAIConfig struct {
	APIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	BaseURL string `envconfig:"OPENAI_BASE_URL" default:""`
	Model   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

// ArchiveConfig holds optional MinIO audio archive configuration
type ArchiveConfig struct {
	Enabled         bool   `envconfig:"ARCHIVE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"ARCHIVE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"ARCHIVE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"ARCHIVE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"ARCHIVE_BUCKET" default:"sermon-audio"`
	UseSSL          bool   `envconfig:"ARCHIVE_USE_SSL" default:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Assembly.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "redis" {
		return fmt.Errorf("STORE_BACKEND must be \"memory\" or \"redis\", got %q", c.Store.Backend)
	}
	if c.Assembly.MaxPollAttempts <= 0 {
		return fmt.Errorf("ASSEMBLYAI_MAX_POLL_ATTEMPTS must be positive")
	}
	return nil
}
