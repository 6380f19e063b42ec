package transcription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const sampleVTT = `WEBVTT

00:00:00.000 --> 00:00:03.000
the quick brown fox

00:00:03.500 --> 00:00:07.000
jumps over the lazy dog`

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF fake wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLemonfoxTranscribe(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("response_format") != "vtt" {
			http.Error(w, "expected vtt response_format", http.StatusBadRequest)
			return
		}
		w.Write([]byte(sampleVTT))
	}))
	defer srv.Close()

	backend := NewLemonfoxBackend("test-key", srv.URL)
	transcript, err := backend.Transcribe(context.Background(), writeTempAudio(t), "english")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(transcript.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(transcript.Segments))
	}
	if transcript.Segments[0].Text != "the quick brown fox" {
		t.Errorf("segment 0 text = %q", transcript.Segments[0].Text)
	}
	if transcript.Segments[1].Start != 3.5 {
		t.Errorf("segment 1 start = %v, want 3.5", transcript.Segments[1].Start)
	}
	if transcript.Language != "english" {
		t.Errorf("language = %q, want english", transcript.Language)
	}
}

func TestLemonfoxTranscribeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	backend := NewLemonfoxBackend("test-key", srv.URL)
	if _, err := backend.Transcribe(context.Background(), writeTempAudio(t), ""); err == nil {
		t.Fatal("expected error for non-200 upstream response")
	}
}
