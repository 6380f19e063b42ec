package transcription

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

const defaultLemonfoxURL = "https://api.lemonfox.ai/v1/audio/transcriptions"

// LemonfoxBackend posts audio to the Lemonfox transcription API and parses
// the VTT response into timestamped segments.
type LemonfoxBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewLemonfoxBackend(apiKey, baseURL string) *LemonfoxBackend {
	if baseURL == "" {
		baseURL = defaultLemonfoxURL
	}
	return &LemonfoxBackend{apiKey: apiKey, baseURL: baseURL, client: &http.Client{}}
}

func (b *LemonfoxBackend) Transcribe(ctx context.Context, audioPath, language string) (Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("error reading audio file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Transcript{}, fmt.Errorf("error creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return Transcript{}, fmt.Errorf("error copying file data: %w", err)
	}

	if language != "" {
		writer.WriteField("language", language)
	}
	writer.WriteField("response_format", "vtt")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL, body)
	if err != nil {
		return Transcript{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcript{}, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Transcript{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, respBody)
	}

	segments, err := parseVTT(string(respBody))
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to parse VTT response: %w", err)
	}
	// Lemonfox does not report a detected language in VTT output, so the
	// hint (possibly empty) is all we can echo back.
	return Transcript{Language: language, Segments: segments}, nil
}
