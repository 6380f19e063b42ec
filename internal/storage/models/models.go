package models

// VideoAsset is one ingested video. Re-ingesting the same path creates a new
// asset with a fresh ID; assets are never deleted by the engine.
type VideoAsset struct {
	ID       string
	Path     string
	Duration float64 // seconds
	Language string  // empty until detected or supplied
}

// Chunk is the atomic retrievable unit: a contiguous time window of one
// video's transcript. ChunkIndex is dense and 0-based per video, and
// StartTime < EndTime always holds.
type Chunk struct {
	VideoID    string
	VideoPath  string
	ChunkIndex int
	Text       string
	StartTime  float64
	EndTime    float64
}

// IndexEntry pairs a chunk with its embedding. Entries belong to the index
// store and are never mutated after creation.
type IndexEntry struct {
	Chunk
	Embedding []float32
}

// SearchResult is a read-only projection of an index entry plus its
// query-relative similarity score.
type SearchResult struct {
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	VideoPath  string  `json:"video_path"`
	ChunkIndex int     `json:"chunk_index"`
}

// ChunkBounds reports one chunk's time window in an ingest summary.
type ChunkBounds struct {
	ChunkIndex int     `json:"chunk_index"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
}

// IngestSummary describes the outcome of a successful ingest. NoSpeech marks
// the valid-but-empty case where transcription found nothing indexable.
type IngestSummary struct {
	VideoID    string        `json:"video_id"`
	VideoPath  string        `json:"video_path"`
	Duration   float64       `json:"duration"`
	Language   string        `json:"language"`
	ChunkCount int           `json:"chunk_count"`
	Chunks     []ChunkBounds `json:"chunks,omitempty"`
	NoSpeech   bool          `json:"no_speech"`
}

// IndexStats are the aggregate numbers behind the index-info endpoint.
type IndexStats struct {
	TotalChunks   int     `json:"total_chunks"`
	TotalVideos   int     `json:"total_videos"`
	TotalDuration float64 `json:"total_duration"`
}

// ExtractResult confirms a completed segment extraction.
type ExtractResult struct {
	VideoPath  string  `json:"input_video"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Duration   float64 `json:"duration"`
	OutputPath string  `json:"output_path"`
}
