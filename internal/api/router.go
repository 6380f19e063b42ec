package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"jamesfarrell.me/video-search/internal/storage/models"
)

// Engine is the search core this HTTP layer fronts. It matches
// *search.Service; the indirection keeps handlers testable without ffmpeg or
// remote APIs.
type Engine interface {
	Ingest(ctx context.Context, videoPath string, chunkDuration float64, language string) (models.IngestSummary, error)
	Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error)
	DescribeIndex(ctx context.Context) (models.IndexStats, error)
	ExtractSegment(ctx context.Context, videoPath string, start, end float64, outputPath string) (models.ExtractResult, error)
}

// Config scopes the HTTP layer: where uploads land, where extracted clips
// are written, and an optional deadline for ingestion requests.
type Config struct {
	StorageRoot   string
	SegmentsDir   string
	IngestTimeout time.Duration // 0 disables the deadline
}

type Router struct {
	*mux.Router
	engine Engine
	log    *zap.SugaredLogger
	cfg    Config
}

// NewRouter wires the four engine operations to their HTTP routes.
func NewRouter(engine Engine, log *zap.SugaredLogger, cfg Config) *Router {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Router{
		Router: mux.NewRouter(),
		engine: engine,
		log:    log,
		cfg:    cfg,
	}

	r.Use(corsMiddleware)

	r.HandleFunc("/", r.root).Methods(http.MethodGet)
	r.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/upload", r.uploadVideo).Methods(http.MethodPost)
	r.HandleFunc("/search", r.searchVideos).Methods(http.MethodGet)
	r.HandleFunc("/index-info", r.indexInfo).Methods(http.MethodGet)
	r.HandleFunc("/extract-segment", r.extractSegment).Methods(http.MethodPost)
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) root(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "video-search API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /upload":          "upload a video file and index it",
			"GET /search":           "retrieve video segments by natural-language query",
			"GET /index-info":       "index statistics",
			"POST /extract-segment": "cut a time range out of a video",
		},
	})
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
