package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the server process reads from the environment.
type Config struct {
	Port    string
	LogMode string

	// OpenAI is used for embeddings and, unless TranscribeBackend is
	// "lemonfox", for whisper transcription.
	OpenAIKey      string
	EmbeddingModel string
	EmbeddingDims  int

	TranscribeBackend string // "whisper" (default) or "lemonfox"
	LemonfoxKey       string
	LemonfoxURL       string

	// DatabaseURL enables the Postgres/pgvector index store. Empty keeps the
	// index in memory for the lifetime of the process.
	DatabaseURL string

	StorageRoot   string
	SegmentsDir   string
	ChunkDuration float64

	// IngestTimeout bounds one ingestion request end to end. Zero leaves
	// long transcriptions running until the client gives up.
	IngestTimeout time.Duration
}

// Load reads the configuration from environment variables, applying defaults
// where a variable is unset.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8567"),
		LogMode:           getenv("LOG_MODE", "development"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:    getenv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		TranscribeBackend: getenv("TRANSCRIBE_BACKEND", "whisper"),
		LemonfoxKey:       os.Getenv("LEMONFOX_API_KEY"),
		LemonfoxURL:       os.Getenv("LEMONFOX_API_URL"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StorageRoot:       getenv("STORAGE_ROOT", "uploaded_videos"),
		SegmentsDir:       getenv("SEGMENTS_DIR", "extracted_segments"),
	}

	if cfg.OpenAIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY environment variable must be set")
	}
	if cfg.TranscribeBackend == "lemonfox" && cfg.LemonfoxKey == "" {
		return Config{}, fmt.Errorf("LEMONFOX_API_KEY must be set when TRANSCRIBE_BACKEND=lemonfox")
	}

	dims, err := strconv.Atoi(getenv("EMBEDDING_DIMS", "1536"))
	if err != nil || dims <= 0 {
		return Config{}, fmt.Errorf("invalid EMBEDDING_DIMS: %q", os.Getenv("EMBEDDING_DIMS"))
	}
	cfg.EmbeddingDims = dims

	chunkDur, err := strconv.ParseFloat(getenv("CHUNK_DURATION", "30"), 64)
	if err != nil || chunkDur <= 0 {
		return Config{}, fmt.Errorf("invalid CHUNK_DURATION: %q", os.Getenv("CHUNK_DURATION"))
	}
	cfg.ChunkDuration = chunkDur

	timeout, err := time.ParseDuration(getenv("INGEST_TIMEOUT", "0s"))
	if err != nil || timeout < 0 {
		return Config{}, fmt.Errorf("invalid INGEST_TIMEOUT: %q", os.Getenv("INGEST_TIMEOUT"))
	}
	cfg.IngestTimeout = timeout

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
