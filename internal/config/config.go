package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	Ollama    OllamaConfig
	Models    ModelConfig
	Retrieval RetrievalConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey          string
	GenerationModel string
	EmbeddingModel  string
}

type OllamaConfig struct {
	URL             string
	Token           string
	GenerationModel string
	EmbeddingModel  string
}

// ModelConfig selects the backend for each model role ("ollama" or "gemini").
type ModelConfig struct {
	EmbeddingProvider  string
	GenerationProvider string
	MaxPromptTokens    int
	MaxNewTokens       int
}

type RetrievalConfig struct {
	IndexBackend        string
	IndexPath           string
	RolesPath           string
	JobDescriptionsPath string
	SimilarityThreshold float64
	DefaultRole         string
	MaxReducedChars     int
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency     int
	UploadRetention time.Duration
	PollInterval    time.Duration
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8000"),
			Env:          getEnv("ENV", "development"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", "30s"),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", "5m"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cv_screener"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "cv_screener_roles"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			GenerationModel: getEnv("GEMINI_GENERATION_MODEL", "gemini-2.5-flash"),
			EmbeddingModel:  getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		Ollama: OllamaConfig{
			URL:             getEnv("OLLAMA_URL", "http://localhost:11434"),
			Token:           getEnv("OLLAMA_TOKEN", ""),
			GenerationModel: getEnv("OLLAMA_GENERATION_MODEL", "phi"),
			EmbeddingModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "all-minilm"),
		},
		Models: ModelConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			GenerationProvider: getEnv("GENERATION_PROVIDER", "ollama"),
			MaxPromptTokens:    getEnvAsInt("GENERATION_MAX_PROMPT_TOKENS", 1200),
			MaxNewTokens:       getEnvAsInt("GENERATION_MAX_NEW_TOKENS", 128),
		},
		Retrieval: RetrievalConfig{
			IndexBackend:        getEnv("INDEX_BACKEND", "flat"),
			IndexPath:           getEnv("INDEX_PATH", "data/roles_index.bin"),
			RolesPath:           getEnv("ROLES_PATH", "data/roles.json"),
			JobDescriptionsPath: getEnv("JOB_DESCRIPTIONS_PATH", "data/job_descriptions.json"),
			SimilarityThreshold: getEnvAsFloat("SIMILARITY_THRESHOLD", 0.65),
			DefaultRole:         getEnv("DEFAULT_ROLE", "Machine Learning Engineer"),
			MaxReducedChars:     getEnvAsInt("MAX_REDUCED_CHARS", 1200),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploaded_cv"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:     getEnvAsInt("WORKER_CONCURRENCY", 2),
			UploadRetention: getEnvAsDuration("UPLOAD_RETENTION", "24h"),
			PollInterval:    getEnvAsDuration("RETENTION_POLL_INTERVAL", "1m"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// MaxRequestBodySize covers the base64 expansion of the largest accepted file.
func (c *Config) MaxRequestBodySize() int {
	return int(c.Storage.MaxFileSize/3*4) + 64*1024
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
