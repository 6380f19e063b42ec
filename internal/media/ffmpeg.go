package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Processor runs ffmpeg/ffprobe against local files. TmpDir is where
// extracted audio lands; empty means os.TempDir().
type Processor struct {
	TmpDir string
}

// ExtractAudio writes a mono 16kHz WAV copy of the video's audio track and
// returns its path. The workfile is unique per call, so concurrent ingests of
// same-named videos never share (or delete) each other's audio. The caller
// owns the file and removes it when done.
func (p *Processor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	out, err := p.audioWorkfile(videoPath)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", videoPath,
		"-vn",
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("ffmpeg audio extraction failed: %w\nstderr: %s", err, stderr.String())
	}
	return out, nil
}

// audioWorkfile reserves a fresh temp path for one extraction.
func (p *Processor) audioWorkfile(videoPath string) (string, error) {
	tmpDir := p.TmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	f, err := os.CreateTemp(tmpDir, base+"_audio_*.wav")
	if err != nil {
		return "", fmt.Errorf("cannot create audio workfile: %w", err)
	}
	f.Close()
	return f.Name(), nil
}

// ProbeDuration returns the container duration of path in seconds.
func (p *Processor) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nstderr: %s", err, stderr.String())
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// ExtractSegment cuts [start, end) seconds of src into dst, re-encoding so
// the output duration tracks the requested range rather than the nearest
// keyframe. The destination is claimed with O_EXCL first, so a concurrent
// extraction to the same path fails instead of clobbering the other writer.
// On any failure the partial output is removed.
func (p *Processor) ExtractSegment(ctx context.Context, src string, start, end float64, dst string) error {
	claim, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("cannot claim output path %s: %w", dst, err)
	}
	claim.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-ss", formatSeconds(start),
		"-i", src,
		"-t", formatSeconds(end-start),
		"-map", "0",
		"-avoid_negative_ts", "make_zero",
		dst,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("ffmpeg segment extraction failed: %w\nstderr: %s", err, stderr.String())
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
