package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvoisard/bilingo/internal/audiocache"
	"github.com/nvoisard/bilingo/internal/client"
	"github.com/nvoisard/bilingo/internal/config"
	"github.com/nvoisard/bilingo/internal/handler/http"
	"github.com/nvoisard/bilingo/internal/logger"
	"github.com/nvoisard/bilingo/internal/repository"
	"github.com/nvoisard/bilingo/internal/server"
	"github.com/nvoisard/bilingo/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("Starting bilingo gateway")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Speech-to-text client
	sttClient := client.NewWhisperClient(cfg.WhisperURL, cfg.WhisperTimeout)

	// Pronunciation analysis server is optional; without it scores fall
	// back to text comparison.
	var analyzer service.PronunciationAnalyzer
	if cfg.PronunciationURL != "" {
		analyzer = client.NewWhisperClient(cfg.PronunciationURL, cfg.WhisperTimeout)
		log.Info().Str("url", cfg.PronunciationURL).Msg("Pronunciation analysis enabled")
	} else {
		log.Warn().Msg("PRONUNCIATION_URL not set, scoring falls back to text comparison")
	}

	// Language model
	var llm service.ChatModel
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Error().Msg("LLM_PROVIDER is gemini but GEMINI_API_KEY is not set")
		} else {
			geminiClient, err := client.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				log.Error().Err(err).Msg("Failed to initialize Gemini client")
			} else {
				llm = geminiClient
				log.Info().Str("model", cfg.GeminiModel).Msg("Gemini client initialized")
			}
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Error().Msg("LLM_PROVIDER is openai but OPENAI_API_KEY is not set")
		} else {
			llm = client.NewOpenAIClient(cfg.OpenAIAPIKey).WithModel(cfg.OpenAIModel)
			log.Info().Msg("OpenAI client initialized")
		}
	default:
		llm = client.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel)
		log.Info().Str("base_url", cfg.OllamaBaseURL).Str("model", cfg.OllamaModel).Msg("Ollama client initialized")
	}

	// Text-to-speech
	var tts service.Synthesizer
	var googleTTS *client.GoogleTTSClient
	switch cfg.TTSProvider {
	case "google":
		googleTTS, err = client.NewGoogleTTSClient(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Google TTS client")
		} else {
			tts = googleTTS
			log.Info().Msg("Google TTS client initialized")
		}
	case "none":
		log.Warn().Msg("TTS disabled, lessons are text only")
	default:
		tts = client.NewEdgeTTSClient()
		log.Info().Msg("Edge TTS client initialized")
	}

	// Clip storage: Cloudflare R2 when configured, local disk otherwise
	var clipStore audiocache.Store
	var audioHandler *http.AudioHandler
	if cfg.R2AccessKeyID != "" && cfg.R2SecretKey != "" && cfg.R2Endpoint != "" && cfg.R2Bucket != "" {
		r2Client, err := client.NewR2Client(ctx, cfg.R2AccessKeyID, cfg.R2SecretKey, cfg.R2Endpoint, cfg.R2Bucket, cfg.R2PublicURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize R2 client")
		} else {
			clipStore = audiocache.NewR2Store(r2Client)
			log.Info().Str("bucket", cfg.R2Bucket).Msg("R2 clip storage initialized")
		}
	}
	if clipStore == nil {
		diskStore, err := audiocache.NewDiskStore(cfg.AudioCacheDir)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize disk clip storage")
		} else {
			clipStore = diskStore
			audioHandler = http.NewAudioHandler(logger.Component(log, "audio"), diskStore)
			log.Info().Str("dir", cfg.AudioCacheDir).Msg("Disk clip storage initialized")
		}
	}

	// Exercise context: Redis when configured, in-memory otherwise
	var exercises service.ExerciseStore
	var redisClient *client.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
		} else {
			exercises = service.NewRedisExerciseStore(redisClient, 0)
			log.Info().Msg("Redis exercise store initialized")
		}
	}
	if exercises == nil {
		exercises = service.NewMemoryExerciseStore()
	}

	// Turn history: enabled only with a database
	var turns service.TurnRecorder
	var historyHandler *http.HistoryHandler
	var postgresClient *client.PostgresClient
	if cfg.DatabaseURL != "" {
		postgresClient, err = client.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Postgres client")
		} else {
			turnRepo := repository.NewPostgresTurnRepository(postgresClient)
			turns = turnRepo
			historyHandler = http.NewHistoryHandler(logger.Component(log, "history"), turnRepo)
			log.Info().Msg("Postgres turn history initialized")
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, turn history disabled")
	}

	// Initialize services
	lessonService := service.NewLessonService(
		sttClient,
		analyzer,
		llm,
		tts,
		clipStore,
		exercises,
		turns,
		logger.Component(log, "lesson"),
	)

	// Initialize handlers
	healthHandler := http.NewHealthHandler()
	lessonHandler := http.NewLessonHandler(logger.Component(log, "lesson"), lessonService)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(cfg, log, healthHandler, lessonHandler, audioHandler, historyHandler)

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	log.Info().
		Str("http_addr", cfg.HTTPAddress()).
		Msg("Gateway started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Close clients
	if googleTTS != nil {
		googleTTS.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if postgresClient != nil {
		postgresClient.Close()
	}

	log.Info().Msg("Gateway stopped")
}
