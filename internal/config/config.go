package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the gateway and the tutor client.
type Config struct {
	// Gateway server
	Host     string `envconfig:"GATEWAY_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"GATEWAY_HTTP_PORT" default:"8080"`

	Environment string `envconfig:"GATEWAY_ENV" default:"development"`

	// Timeouts
	ReadTimeout     time.Duration `envconfig:"GATEWAY_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"GATEWAY_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout     time.Duration `envconfig:"GATEWAY_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"GATEWAY_SHUTDOWN_TIMEOUT" default:"30s"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Speech-to-text
	WhisperURL       string        `envconfig:"WHISPER_URL" default:"http://localhost:8001"`
	PronunciationURL string        `envconfig:"PRONUNCIATION_URL"`
	WhisperTimeout   time.Duration `envconfig:"WHISPER_TIMEOUT" default:"120s"`

	// Language model
	LLMProvider   string `envconfig:"LLM_PROVIDER" default:"ollama"`
	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434/v1"`
	OllamaModel   string `envconfig:"OLLAMA_MODEL" default:"llama3.1:8b"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL"`

	// Text-to-speech
	TTSProvider string `envconfig:"TTS_PROVIDER" default:"edge"`

	// Audio cache
	AudioCacheDir string `envconfig:"AUDIO_CACHE_DIR" default:"audio_cache"`

	// Redis (exercise context store; in-memory fallback when unset)
	RedisURL string `envconfig:"REDIS_URL"`

	// Database (turn history; disabled when unset)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Cloudflare R2 (clip storage; local disk cache when unset)
	R2AccessKeyID string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretKey   string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint    string `envconfig:"R2_ENDPOINT"`
	R2Bucket      string `envconfig:"R2_BUCKET_NAME"`
	R2PublicURL   string `envconfig:"R2_PUBLIC_URL"`

	// CORS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedMethods []string `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,OPTIONS"`
	CORSAllowedHeaders []string `envconfig:"CORS_ALLOWED_HEADERS" default:"Accept,Content-Type,X-Request-ID"`

	// Tutor client
	GatewayURL      string        `envconfig:"TUTOR_GATEWAY_URL" default:"http://localhost:8080"`
	NativeLang      string        `envconfig:"TUTOR_NATIVE_LANG" default:"fr"`
	TargetLang      string        `envconfig:"TUTOR_TARGET_LANG" default:"ru"`
	Level           string        `envconfig:"TUTOR_LEVEL" default:"A1"`
	APIVersion      string        `envconfig:"TUTOR_API_VERSION"`
	RecorderCommand []string      `envconfig:"TUTOR_RECORDER_COMMAND" default:"ffmpeg,-f,pulse,-i,default,-ac,1,-ar,16000,-f,wav,-"`
	PlayerCommand   []string      `envconfig:"TUTOR_PLAYER_COMMAND" default:"ffplay,-nodisp,-autoexit,-loglevel,quiet"`
	RequestTimeout  time.Duration `envconfig:"TUTOR_REQUEST_TIMEOUT" default:"180s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}

// HTTPAddress returns the gateway server address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}
