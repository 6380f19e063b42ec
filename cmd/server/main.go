package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"jamesfarrell.me/video-search/internal/api"
	"jamesfarrell.me/video-search/internal/config"
	"jamesfarrell.me/video-search/internal/embeddings"
	"jamesfarrell.me/video-search/internal/logger"
	"jamesfarrell.me/video-search/internal/media"
	"jamesfarrell.me/video-search/internal/search"
	"jamesfarrell.me/video-search/internal/storage/db"
	"jamesfarrell.me/video-search/internal/storage/memory"
	"jamesfarrell.me/video-search/internal/storage/postgres"
	"jamesfarrell.me/video-search/internal/transcription"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	var store search.IndexStore
	if cfg.DatabaseURL != "" {
		database, err := db.NewConnection(db.Config{URL: cfg.DatabaseURL})
		if err != nil {
			logg.Fatalw("failed to connect to database", "url", db.MaskURL(cfg.DatabaseURL), "error", err)
		}
		defer database.Close()

		repo := postgres.NewIndexRepository(database, cfg.EmbeddingDims)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			logg.Fatalw("failed to prepare index schema", "error", err)
		}
		store = repo
		logg.Infow("using Postgres index store", "url", db.MaskURL(cfg.DatabaseURL))
	} else {
		store = memory.NewIndex()
		logg.Infow("using in-memory index store")
	}

	var backend transcription.Backend
	switch cfg.TranscribeBackend {
	case "lemonfox":
		backend = transcription.NewLemonfoxBackend(cfg.LemonfoxKey, cfg.LemonfoxURL)
	default:
		backend = transcription.NewWhisperBackend(cfg.OpenAIKey, "")
	}

	embedder := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
	engine := search.New(store, backend, embedder, &media.Processor{}, logg,
		search.Options{DefaultChunkDuration: cfg.ChunkDuration})

	for _, dir := range []string{cfg.StorageRoot, cfg.SegmentsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logg.Fatalw("failed to create directory", "dir", dir, "error", err)
		}
	}

	router := api.NewRouter(engine, logg, api.Config{
		StorageRoot:   cfg.StorageRoot,
		SegmentsDir:   cfg.SegmentsDir,
		IngestTimeout: cfg.IngestTimeout,
	})

	logg.Infow("starting HTTP server", "port", cfg.Port,
		"transcribe_backend", cfg.TranscribeBackend, "embedding_model", cfg.EmbeddingModel)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logg.Fatalw("HTTP server error", "error", err)
	}
}
