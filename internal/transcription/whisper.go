package transcription

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperBackend transcribes audio through the OpenAI audio API, requesting
// verbose JSON so segment timings come back alongside the text.
type WhisperBackend struct {
	client *openai.Client
	model  string
}

func NewWhisperBackend(apiKey, model string) *WhisperBackend {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperBackend{client: openai.NewClient(apiKey), model: model}
}

func (b *WhisperBackend) Transcribe(ctx context.Context, audioPath, language string) (Transcript, error) {
	resp, err := b.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    b.model,
		FilePath: audioPath,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("whisper transcription failed: %w", err)
	}

	t := Transcript{Language: resp.Language}
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		t.Segments = append(t.Segments, Segment{Start: seg.Start, End: seg.End, Text: text})
	}
	return t, nil
}
