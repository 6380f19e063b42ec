package memory

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"jamesfarrell.me/video-search/internal/storage/models"
)

func makeEntry(videoID string, chunkIndex int, vec []float32) models.IndexEntry {
	return models.IndexEntry{
		Chunk: models.Chunk{
			VideoID:    videoID,
			VideoPath:  videoID + ".mp4",
			ChunkIndex: chunkIndex,
			Text:       fmt.Sprintf("%s chunk %d", videoID, chunkIndex),
			StartTime:  float64(chunkIndex) * 30,
			EndTime:    float64(chunkIndex)*30 + 30,
		},
		Embedding: vec,
	}
}

func TestSearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	err := idx.Append(ctx, []models.IndexEntry{
		makeEntry("a", 0, []float32{1, 0, 0}),
		makeEntry("a", 1, []float32{0, 1, 0}),
		makeEntry("a", 2, []float32{0.9, 0.1, 0}),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("result %d score %v > previous %v", i, results[i].Score, results[i-1].Score)
		}
	}
	if results[0].ChunkIndex != 0 {
		t.Errorf("top result chunk index = %d, want 0 (exact match)", results[0].ChunkIndex)
	}
}

func TestSearchDeterministicTieBreaks(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	// Identical vectors everywhere: ranking must fall back to chunk index,
	// then to video insertion order.
	same := []float32{1, 1, 0}
	if err := idx.Append(ctx, []models.IndexEntry{makeEntry("first", 0, same), makeEntry("first", 1, same)}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Append(ctx, []models.IndexEntry{makeEntry("second", 0, same)}); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(ctx, same, 3)
	if err != nil {
		t.Fatal(err)
	}
	wantPaths := []string{"first.mp4", "second.mp4", "first.mp4"}
	wantIndexes := []int{0, 0, 1}
	for i := range results {
		if results[i].VideoPath != wantPaths[i] || results[i].ChunkIndex != wantIndexes[i] {
			t.Errorf("result %d = (%s, %d), want (%s, %d)",
				i, results[i].VideoPath, results[i].ChunkIndex, wantPaths[i], wantIndexes[i])
		}
	}

	again, err := idx.Search(ctx, same, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(results, again) {
		t.Error("two searches over identical state returned different output")
	}
}

func TestSearchClampsTopK(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	if err := idx.Append(ctx, []models.IndexEntry{
		makeEntry("a", 0, []float32{1, 0}),
		makeEntry("a", 1, []float32{0, 1}),
	}); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search(ctx, []float32{1, 0}, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want all 2", len(results))
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := NewIndex()
	results, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty index", len(results))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	if err := idx.Append(ctx, []models.IndexEntry{
		makeEntry("a", 0, []float32{1}),
		makeEntry("a", 1, []float32{1}),
		makeEntry("b", 0, []float32{1}),
	}); err != nil {
		t.Fatal(err)
	}

	stats, err := idx.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks != 3 {
		t.Errorf("TotalChunks = %d, want 3", stats.TotalChunks)
	}
	if stats.TotalVideos != 2 {
		t.Errorf("TotalVideos = %d, want 2", stats.TotalVideos)
	}
	if stats.TotalDuration != 90 {
		t.Errorf("TotalDuration = %v, want 90", stats.TotalDuration)
	}
}

func TestAppendAtomicUnderConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	const videos = 8
	const chunksPerVideo = 5

	var writers sync.WaitGroup
	var reader sync.WaitGroup
	done := make(chan struct{})

	reader.Add(1)
	go func() {
		defer reader.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			stats, err := idx.Stats(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			if stats.TotalChunks%chunksPerVideo != 0 {
				t.Errorf("observed partial video: %d chunks", stats.TotalChunks)
				return
			}
		}
	}()

	for v := 0; v < videos; v++ {
		writers.Add(1)
		go func(v int) {
			defer writers.Done()
			entries := make([]models.IndexEntry, 0, chunksPerVideo)
			for c := 0; c < chunksPerVideo; c++ {
				entries = append(entries, makeEntry(fmt.Sprintf("video-%d", v), c, []float32{float32(v), float32(c)}))
			}
			if err := idx.Append(ctx, entries); err != nil {
				t.Error(err)
			}
		}(v)
	}

	writers.Wait()
	close(done)
	reader.Wait()

	stats, err := idx.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalChunks != videos*chunksPerVideo {
		t.Errorf("TotalChunks = %d, want %d (no lost updates)", stats.TotalChunks, videos*chunksPerVideo)
	}
	if stats.TotalVideos != videos {
		t.Errorf("TotalVideos = %d, want %d", stats.TotalVideos, videos)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scale invariant", []float32{1, 1}, []float32{10, 10}, 1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
