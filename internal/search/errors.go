package search

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so an outer layer can translate it into
// a transport-level response without inspecting error strings.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindProcessing   Kind = "processing_failure"
)

// Stage names the pipeline step that produced a failure.
type Stage string

const (
	StageReceived     Stage = "received"
	StageTranscribing Stage = "transcribing"
	StageChunking     Stage = "chunking"
	StageEmbedding    Stage = "embedding"
	StageIndexing     Stage = "indexing"
	StageSearching    Stage = "searching"
	StageExtracting   Stage = "extracting"
)

// ErrEmptyQuery is returned by Search for blank queries.
var ErrEmptyQuery = errors.New("query must not be empty")

// Error is the engine's failure value: what kind of failure, at which stage,
// for which input, caused by what.
type Error struct {
	Kind  Kind
	Stage Stage
	Input string
	Err   error
}

func (e *Error) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s at stage %s for %q: %v", e.Kind, e.Stage, e.Input, e.Err)
	}
	return fmt.Sprintf("%s at stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from err, defaulting to a processing
// failure for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProcessing
}

func invalidInput(stage Stage, input string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Stage: stage, Input: input, Err: err}
}

func notFound(stage Stage, input string, err error) *Error {
	return &Error{Kind: KindNotFound, Stage: stage, Input: input, Err: err}
}

func processing(stage Stage, input string, err error) *Error {
	return &Error{Kind: KindProcessing, Stage: stage, Input: input, Err: err}
}
