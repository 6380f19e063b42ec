package transcription

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseVTT parses WebVTT content into ordered segments. Cues with empty text
// are dropped rather than turned into empty segments.
func parseVTT(content string) ([]Segment, error) {
	// Trim any quotes from the content
	content = strings.Trim(content, "\"")

	// Convert literal \n to actual newlines if needed
	if strings.Contains(content, "\\n") {
		content = strings.ReplaceAll(content, "\\n", "\n")
	}

	if !strings.HasPrefix(content, "WEBVTT\n\n") {
		return nil, fmt.Errorf("invalid VTT format: missing WEBVTT header")
	}
	content = strings.TrimPrefix(content, "WEBVTT\n\n")

	var segments []Segment
	blocks := strings.Split(content, "\n\n")

	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			continue
		}

		// First line should be the timestamp pair
		timestamps := strings.Split(lines[0], " --> ")
		if len(timestamps) != 2 {
			continue
		}

		start, err := parseVTTTimestamp(timestamps[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start timestamp: %w", err)
		}
		end, err := parseVTTTimestamp(timestamps[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end timestamp: %w", err)
		}

		// Remaining lines are the spoken text
		text := strings.TrimSpace(strings.Join(lines[1:], " "))
		if text == "" {
			continue
		}

		segments = append(segments, Segment{
			Start: start.Seconds(),
			End:   end.Seconds(),
			Text:  text,
		})
	}

	return segments, nil
}

func parseVTTTimestamp(timestamp string) (time.Duration, error) {
	// Validate format (HH:MM:SS.mmm)
	if !strings.Contains(timestamp, ".") {
		return 0, fmt.Errorf("invalid timestamp format: missing milliseconds")
	}

	parts := strings.Split(timestamp, ":")
	if len(parts) != 3 || len(parts[0]) != 2 {
		return 0, fmt.Errorf("invalid timestamp format: expected HH:MM:SS.mmm")
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours: %w", err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes: %w", err)
	}

	secondParts := strings.Split(parts[2], ".")
	if len(secondParts) != 2 {
		return 0, fmt.Errorf("invalid seconds format: missing milliseconds")
	}
	seconds, err := strconv.Atoi(secondParts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid seconds: %w", err)
	}
	milliseconds, err := strconv.Atoi(secondParts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid milliseconds: %w", err)
	}

	duration := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(milliseconds)*time.Millisecond

	return duration, nil
}
