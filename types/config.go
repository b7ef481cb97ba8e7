package types

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every setting the service reads from the environment.
// Values are validated for presence only; the services they point at
// decide whether they are usable.
type Config struct {
	ServerAddr string
	APIToken   string

	GrokAPIKey     string
	GrokBaseURL    string
	GrokModel      string
	EmbeddingModel string

	VectorStore       string // "pinecone" or "postgres"
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string
	PostgresConnStr   string

	RedisURL string

	ConverterURL string
	ChunkSize    int
	ChunkOverlap int
}

// ConfigFromEnv builds a Config from environment variables. Missing
// required variables are collected and reported in a single error.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ServerAddr:        getEnv("SERVER_ADDR", ":8080"),
		APIToken:          os.Getenv("API_TOKEN"),
		GrokAPIKey:        os.Getenv("GROK_API_KEY"),
		GrokBaseURL:       getEnv("GROK_BASE_URL", "https://api.x.ai/v1"),
		GrokModel:         getEnv("GROK_MODEL", "grok-beta"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		VectorStore:       getEnv("VECTOR_STORE", "pinecone"),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		PineconeNamespace: os.Getenv("PINECONE_NAMESPACE"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		ConverterURL:      os.Getenv("CONVERTER_URL"),
		ChunkSize:         getEnvInt("CHUNK_SIZE", 200),
		ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", 20),
	}

	missing := []string{}
	if cfg.APIToken == "" {
		missing = append(missing, "API_TOKEN")
	}
	if cfg.GrokAPIKey == "" {
		missing = append(missing, "GROK_API_KEY")
	}

	switch cfg.VectorStore {
	case "pinecone":
		if cfg.PineconeAPIKey == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if cfg.PineconeIndexHost == "" {
			missing = append(missing, "PINECONE_INDEX_HOST")
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnv("PG_PORT", "5432"))
		cfg.PostgresConnStr = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"),
		)
		if os.Getenv("PG_HOST") == "" {
			missing = append(missing, "PG_HOST")
		}
	default:
		return cfg, fmt.Errorf("unknown VECTOR_STORE %q (want pinecone or postgres)", cfg.VectorStore)
	}

	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
