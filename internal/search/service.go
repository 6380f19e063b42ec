package search

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jamesfarrell.me/video-search/internal/embeddings"
	"jamesfarrell.me/video-search/internal/storage/models"
	"jamesfarrell.me/video-search/internal/transcription"
)

// IndexStore holds every successfully ingested chunk with its embedding.
// Append must be atomic with respect to Search: a reader sees either none or
// all of one video's chunks. Entries are never updated or removed.
type IndexStore interface {
	Append(ctx context.Context, entries []models.IndexEntry) error
	Search(ctx context.Context, query []float32, topK int) ([]models.SearchResult, error)
	Stats(ctx context.Context) (models.IndexStats, error)
}

// Media covers the ffmpeg-backed operations the engine needs.
type Media interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	ProbeDuration(ctx context.Context, path string) (float64, error)
	ExtractSegment(ctx context.Context, src string, start, end float64, dst string) error
}

const (
	defaultTopK = 5
	maxTopK     = 20
)

// Options tune the engine; zero values get sensible defaults.
type Options struct {
	DefaultChunkDuration float64 // seconds, 30 when zero
	EmbedBatchSize       int     // texts per embedding API call, 64 when zero
	EmbedConcurrency     int     // concurrent embedding calls per ingest, 4 when zero
}

// Service is the video search engine. It owns the index store and
// orchestrates transcription, chunking, embedding, retrieval and segment
// extraction. Construct one per process with New and share it; all methods
// are safe for concurrent use. Only the final index append is serialized —
// transcription, embedding and extraction run without holding any lock.
type Service struct {
	store       IndexStore
	transcriber transcription.Backend
	embedder    embeddings.Embedder
	media       Media
	log         *zap.SugaredLogger
	opts        Options
}

func New(store IndexStore, transcriber transcription.Backend, embedder embeddings.Embedder, media Media, log *zap.SugaredLogger, opts Options) *Service {
	if opts.DefaultChunkDuration <= 0 {
		opts.DefaultChunkDuration = 30
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = 64
	}
	if opts.EmbedConcurrency <= 0 {
		opts.EmbedConcurrency = 4
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		store:       store,
		transcriber: transcriber,
		embedder:    embedder,
		media:       media,
		log:         log,
		opts:        opts,
	}
}

// Ingest transcribes, chunks, embeds and indexes one video. The index is not
// touched until every chunk has an embedding, so a failed ingest leaves it
// exactly as it was before the call. Re-ingesting a path indexes it again
// under a fresh video identity.
//
// chunkDuration of 0 selects the configured default; language may be empty
// for auto-detection.
func (s *Service) Ingest(ctx context.Context, videoPath string, chunkDuration float64, language string) (models.IngestSummary, error) {
	if chunkDuration == 0 {
		chunkDuration = s.opts.DefaultChunkDuration
	}
	if chunkDuration < 0 {
		return models.IngestSummary{}, invalidInput(StageReceived, videoPath,
			fmt.Errorf("chunk duration must be positive, got %v", chunkDuration))
	}
	if _, err := os.Stat(videoPath); err != nil {
		return models.IngestSummary{}, notFound(StageReceived, videoPath, err)
	}

	video := models.VideoAsset{
		ID:       uuid.NewString(),
		Path:     videoPath,
		Language: language,
	}

	duration, err := s.media.ProbeDuration(ctx, videoPath)
	if err != nil {
		return models.IngestSummary{}, processing(StageReceived, videoPath, err)
	}
	video.Duration = duration

	s.log.Infow("ingesting video", "path", videoPath, "video_id", video.ID, "duration", duration)

	audioPath, err := s.media.ExtractAudio(ctx, videoPath)
	if err != nil {
		return models.IngestSummary{}, processing(StageTranscribing, videoPath, err)
	}
	defer os.Remove(audioPath)

	transcript, err := s.transcriber.Transcribe(ctx, audioPath, language)
	if err != nil {
		return models.IngestSummary{}, processing(StageTranscribing, videoPath, err)
	}
	if video.Language == "" {
		video.Language = transcript.Language
	}

	chunks := transcription.ChunkSegments(transcript.Segments, chunkDuration)
	summary := models.IngestSummary{
		VideoID:   video.ID,
		VideoPath: videoPath,
		Duration:  video.Duration,
		Language:  video.Language,
	}
	if len(chunks) == 0 {
		// Valid outcome, reported distinctly: the video has no indexable speech.
		summary.NoSpeech = true
		s.log.Infow("no indexable speech found", "path", videoPath, "video_id", video.ID)
		return summary, nil
	}
	for i := range chunks {
		chunks[i].VideoID = video.ID
		chunks[i].VideoPath = videoPath
	}

	entries, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return models.IngestSummary{}, processing(StageEmbedding, videoPath, err)
	}

	if err := s.store.Append(ctx, entries); err != nil {
		return models.IngestSummary{}, processing(StageIndexing, videoPath, err)
	}

	summary.ChunkCount = len(entries)
	summary.Chunks = make([]models.ChunkBounds, 0, len(entries))
	for _, e := range entries {
		summary.Chunks = append(summary.Chunks, models.ChunkBounds{
			ChunkIndex: e.ChunkIndex,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
		})
	}
	s.log.Infow("video indexed", "path", videoPath, "video_id", video.ID,
		"chunks", len(entries), "language", video.Language)
	return summary, nil
}

// embedChunks embeds chunk texts in bounded-parallel batches. Results land at
// their chunk's position, so entry order matches chunk order regardless of
// batch completion order.
func (s *Service) embedChunks(ctx context.Context, chunks []models.Chunk) ([]models.IndexEntry, error) {
	entries := make([]models.IndexEntry, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.EmbedConcurrency)
	for start := 0; start < len(chunks); start += s.opts.EmbedBatchSize {
		end := min(start+s.opts.EmbedBatchSize, len(chunks))
		batch := chunks[start:end]
		offset := start
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}
			vectors, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			for i, vec := range vectors {
				entries[offset+i] = models.IndexEntry{Chunk: batch[i], Embedding: vec}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Search embeds the query and returns the topK most similar chunks, highest
// score first. An empty index yields an empty result list, not an error.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalidInput(StageSearching, query, ErrEmptyQuery)
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	// Short-circuit the empty index so we don't spend an embedding call on a
	// query that cannot match anything.
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, processing(StageSearching, query, err)
	}
	if stats.TotalChunks == 0 {
		return []models.SearchResult{}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, processing(StageEmbedding, query, err)
	}

	results, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, processing(StageSearching, query, err)
	}
	return results, nil
}

// DescribeIndex reports aggregate index statistics. An empty index is a
// valid state, not an error.
func (s *Service) DescribeIndex(ctx context.Context) (models.IndexStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.IndexStats{}, processing(StageSearching, "", err)
	}
	return stats, nil
}

// ExtractSegment cuts [start, end) seconds of videoPath into outputPath.
// The range is validated before any file is touched; on failure no file is
// left at outputPath.
func (s *Service) ExtractSegment(ctx context.Context, videoPath string, start, end float64, outputPath string) (models.ExtractResult, error) {
	if start < 0 || end <= start {
		return models.ExtractResult{}, invalidInput(StageExtracting, videoPath,
			fmt.Errorf("invalid range [%v, %v): start must be >= 0 and less than end", start, end))
	}
	if _, err := os.Stat(videoPath); err != nil {
		return models.ExtractResult{}, notFound(StageExtracting, videoPath, err)
	}

	duration, err := s.media.ProbeDuration(ctx, videoPath)
	if err != nil {
		return models.ExtractResult{}, processing(StageExtracting, videoPath, err)
	}
	if end > duration {
		return models.ExtractResult{}, invalidInput(StageExtracting, videoPath,
			fmt.Errorf("end time %v exceeds video duration %v", end, duration))
	}

	if err := s.media.ExtractSegment(ctx, videoPath, start, end, outputPath); err != nil {
		return models.ExtractResult{}, processing(StageExtracting, videoPath, err)
	}

	s.log.Infow("segment extracted", "path", videoPath, "start", start, "end", end, "output", outputPath)
	return models.ExtractResult{
		VideoPath:  videoPath,
		StartTime:  start,
		EndTime:    end,
		Duration:   end - start,
		OutputPath: outputPath,
	}, nil
}
