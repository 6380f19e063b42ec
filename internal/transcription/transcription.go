package transcription

import "context"

// Segment is one timestamped span of recognized speech, in seconds from the
// start of the media. Silence produces no segment at all.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Transcript bundles the ordered segments with the language the backend
// detected (or was told to use).
type Transcript struct {
	Language string
	Segments []Segment
}

// Backend is a pluggable speech-to-text engine. language may be empty, in
// which case the backend auto-detects it and reports the result in the
// Transcript.
type Backend interface {
	Transcribe(ctx context.Context, audioPath string, language string) (Transcript, error)
}
