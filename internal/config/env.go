package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	AIAPIKey   string
	EmbedModel string
	GenModel   string

	VectorStore string // "qdrant" or "pgvector"
	Collection  string

	QdrantURL    string
	QdrantAPIKey string

	DatabaseURL string

	// MaxChars bounds chunk size in runes. Changing it re-partitions every
	// document into a different point-id space; re-ingest with recreate=true
	// after changing it.
	MaxChars    int
	EmbedBatch  int
	UpsertBatch int
	TopK        int

	ScrapeQuery string
	IngestURL   string
	SnapshotDir string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "55555"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		VectorStore:  getEnv("VECTOR_STORE", "qdrant"),
		Collection:   getEnv("COLLECTION", "documents"),
		QdrantURL:    getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		MaxChars:     getEnvInt("MAX_CHARS", 3500),
		EmbedBatch:   getEnvInt("EMBED_BATCH", 16),
		UpsertBatch:  getEnvInt("UPSERT_BATCH", 64),
		TopK:         getEnvInt("TOP_K", 4),
		ScrapeQuery:  getEnv("SCRAPE_QUERY", "monitoria"),
		IngestURL:    getEnv("INGEST_URL", "http://localhost:55555/api/ingest"),
		SnapshotDir:  getEnv("SNAPSHOT_DIR", "data"),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),
	}

	if cfg.VectorStore == "pgvector" && cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set (required for VECTOR_STORE=pgvector)")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
