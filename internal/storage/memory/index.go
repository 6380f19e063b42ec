package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"jamesfarrell.me/video-search/internal/storage/models"
)

// Index is an in-memory, append-only vector index. Append publishes all of a
// video's entries under one lock acquisition and Search captures the entry
// slice under a read lock before scoring, so a reader never observes a
// partially appended video.
type Index struct {
	mu      sync.RWMutex
	entries []entry
	videos  map[string]int // video ID -> insertion sequence
}

type entry struct {
	models.IndexEntry
	videoSeq int
}

func NewIndex() *Index {
	return &Index{videos: make(map[string]int)}
}

// Append adds the entries for one ingested video.
func (x *Index) Append(ctx context.Context, entries []models.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range entries {
		seq, ok := x.videos[e.VideoID]
		if !ok {
			seq = len(x.videos)
			x.videos[e.VideoID] = seq
		}
		x.entries = append(x.entries, entry{IndexEntry: e, videoSeq: seq})
	}
	return nil
}

// Search scans the current snapshot and returns the topK entries most similar
// to the query vector, highest cosine similarity first. Ties rank by lower
// chunk index, then by earlier video insertion. topK larger than the index
// returns everything.
func (x *Index) Search(ctx context.Context, query []float32, topK int) ([]models.SearchResult, error) {
	x.mu.RLock()
	snapshot := x.entries
	x.mu.RUnlock()

	if topK > len(snapshot) {
		topK = len(snapshot)
	}
	if topK <= 0 {
		return []models.SearchResult{}, nil
	}

	type scored struct {
		entry
		score float64
	}
	ranked := make([]scored, len(snapshot))
	for i, e := range snapshot {
		ranked[i] = scored{entry: e, score: CosineSimilarity(query, e.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].ChunkIndex != ranked[j].ChunkIndex {
			return ranked[i].ChunkIndex < ranked[j].ChunkIndex
		}
		return ranked[i].videoSeq < ranked[j].videoSeq
	})

	results := make([]models.SearchResult, 0, topK)
	for _, r := range ranked[:topK] {
		results = append(results, models.SearchResult{
			Score:      r.score,
			Text:       r.Text,
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
			VideoPath:  r.VideoPath,
			ChunkIndex: r.ChunkIndex,
		})
	}
	return results, nil
}

// Stats reports the aggregate index counters.
func (x *Index) Stats(ctx context.Context) (models.IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	stats := models.IndexStats{
		TotalChunks: len(x.entries),
		TotalVideos: len(x.videos),
	}
	for _, e := range x.entries {
		stats.TotalDuration += e.EndTime - e.StartTime
	}
	return stats, nil
}

// CosineSimilarity is a·b / (|a||b|). It is zero when the lengths differ or
// either vector has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
