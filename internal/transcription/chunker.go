package transcription

import (
	"strings"

	"jamesfarrell.me/video-search/internal/storage/models"
)

// ChunkSegments groups ordered transcript segments into windows spanning at
// most chunkDuration seconds. A window closes when the next segment would
// push its span past chunkDuration; that segment starts the next window.
// Segments are never split, so a single segment longer than chunkDuration
// becomes a chunk of its own. Chunk bounds are the true content bounds of
// the contained segments, not padded to the nominal duration.
//
// An empty transcript yields zero chunks. VideoID and VideoPath on the
// returned chunks are left for the caller to fill in.
func ChunkSegments(segments []Segment, chunkDuration float64) []models.Chunk {
	var chunks []models.Chunk
	var window []Segment

	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if len(window) > 0 && seg.End-window[0].Start > chunkDuration {
			chunks = append(chunks, buildChunk(window, len(chunks)))
			window = nil
		}
		window = append(window, seg)
	}
	if len(window) > 0 {
		chunks = append(chunks, buildChunk(window, len(chunks)))
	}
	return chunks
}

func buildChunk(window []Segment, index int) models.Chunk {
	parts := make([]string, len(window))
	for i, seg := range window {
		parts[i] = strings.TrimSpace(seg.Text)
	}
	return models.Chunk{
		ChunkIndex: index,
		Text:       strings.Join(parts, " "),
		StartTime:  window[0].Start,
		EndTime:    window[len(window)-1].End,
	}
}
