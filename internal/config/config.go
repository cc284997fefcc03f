package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"scoutgpt-be/internal/apperrors"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	ArcGIS   ArcGISConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ReindexTopic       string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	AnthropicAPIKey   string
	ClaudeModel       string
	MaxTokens         int
	Temperature       float64
	MaxToolRounds     int
	EmbeddingProvider string // "openai" or "ollama"
	OpenAIAPIKey      string
	EmbeddingModel    string
	EmbeddingDim      int
	OllamaBaseURL     string
	OllamaModel       string
	ChunkSize         int
	ChunkOverlap      int
	MaxChunks         int
}

type ArcGISConfig struct {
	ParcelLayerURL string
	ZoningLayerURL string
	CacheTTLSec    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ReindexTopic:       getEnv("REINDEX_DOCUMENT_TOPIC_NAME", "REINDEX_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
			ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens:         getEnvAsInt("CLAUDE_MAX_TOKENS", 4096),
			Temperature:       getEnvAsFloat("CLAUDE_TEMPERATURE", 0.7),
			MaxToolRounds:     getEnvAsInt("MAX_TOOL_ROUNDS", 10),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDim:      getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 200),
			MaxChunks:         getEnvAsInt("MAX_CHUNKS", 5),
		},
		ArcGIS: ArcGISConfig{
			ParcelLayerURL: getEnv("ARCGIS_PARCEL_LAYER_URL", ""),
			ZoningLayerURL: getEnv("ARCGIS_ZONING_LAYER_URL", ""),
			CacheTTLSec:    getEnvAsInt("ARCGIS_CACHE_TTL_SECONDS", 900),
		},
	}
}

// Validate rejects parameter combinations that would corrupt ingestion or
// retrieval before the server starts serving.
func (c *Config) Validate() error {
	if c.Ai.ChunkSize <= 0 {
		return apperrors.NewConfigurationError("CHUNK_SIZE", "must be a positive integer")
	}
	if c.Ai.ChunkOverlap < 0 {
		return apperrors.NewConfigurationError("CHUNK_OVERLAP", "must not be negative")
	}
	if c.Ai.ChunkOverlap >= c.Ai.ChunkSize {
		return apperrors.NewConfigurationError("CHUNK_OVERLAP", "must be smaller than CHUNK_SIZE")
	}
	if c.Ai.EmbeddingDim <= 0 {
		return apperrors.NewConfigurationError("EMBEDDING_DIMENSION", "must be a positive integer")
	}
	if c.Ai.MaxToolRounds <= 0 {
		return apperrors.NewConfigurationError("MAX_TOOL_ROUNDS", "must be a positive integer")
	}
	if c.Ai.MaxChunks <= 0 {
		return apperrors.NewConfigurationError("MAX_CHUNKS", "must be a positive integer")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
