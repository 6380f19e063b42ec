package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"jamesfarrell.me/video-search/internal/search"
)

const maxUploadBytes = 500 << 20 // 500MB

var allowedExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
	".flv": true,
	".wmv": true,
}

func (r *Router) uploadVideo(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large or malformed: %v", err))
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file format %q", ext))
		return
	}

	chunkDuration := 30.0
	if v := req.URL.Query().Get("chunk_duration"); v != "" {
		chunkDuration, err = strconv.ParseFloat(v, 64)
		if err != nil || chunkDuration <= 0 {
			writeError(w, http.StatusBadRequest, "chunk_duration must be a positive number of seconds")
			return
		}
	}
	language := req.URL.Query().Get("language")

	destPath, size, err := r.saveUpload(file, header.Filename, ext)
	if err != nil {
		r.log.Errorw("failed to store upload", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}

	r.log.Infow("video uploaded", "path", destPath, "size", size)

	ctx := req.Context()
	if r.cfg.IngestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.IngestTimeout)
		defer cancel()
	}

	summary, err := r.engine.Ingest(ctx, destPath, chunkDuration, language)
	if err != nil {
		r.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:  "success",
		Message: "video uploaded and indexed",
		Data: uploadData{
			Filename:       filepath.Base(destPath),
			FilePath:       destPath,
			FileSize:       size,
			IndexingResult: summary,
		},
	})
}

// saveUpload writes the upload under the storage root, appending _1, _2, ...
// to the stem until the name is free. O_EXCL closes the race between the
// existence check and the create.
func (r *Router) saveUpload(src io.Reader, filename, ext string) (string, int64, error) {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	for counter := 0; ; counter++ {
		name := stem + ext
		if counter > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, counter, ext)
		}
		destPath := filepath.Join(r.cfg.StorageRoot, name)

		dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, err
		}

		size, err := io.Copy(dest, src)
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(destPath)
			return "", 0, err
		}
		return destPath, size, nil
	}
}

func (r *Router) searchVideos(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query().Get("q")

	topK := 5
	if v := req.URL.Query().Get("top_k"); v != "" {
		var err error
		topK, err = strconv.Atoi(v)
		if err != nil || topK < 1 || topK > 20 {
			writeError(w, http.StatusBadRequest, "top_k must be an integer between 1 and 20")
			return
		}
	}

	results, err := r.engine.Search(req.Context(), query, topK)
	if err != nil {
		r.writeEngineError(w, err)
		return
	}

	out := make([]searchResult, 0, len(results))
	for _, res := range results {
		out = append(out, searchResult{
			Score:      res.Score,
			Text:       res.Text,
			StartTime:  res.StartTime,
			EndTime:    res.EndTime,
			Duration:   res.EndTime - res.StartTime,
			VideoPath:  res.VideoPath,
			ChunkIndex: res.ChunkIndex,
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Status:       "success",
		Query:        query,
		TotalResults: len(out),
		Results:      out,
	})
}

func (r *Router) indexInfo(w http.ResponseWriter, req *http.Request) {
	stats, err := r.engine.DescribeIndex(req.Context())
	if err != nil {
		r.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, indexInfoResponse{Status: "success", IndexInfo: stats})
}

func (r *Router) extractSegment(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	videoPath := q.Get("video_path")
	if videoPath == "" {
		writeError(w, http.StatusBadRequest, "video_path is required")
		return
	}

	start, err := strconv.ParseFloat(q.Get("start_time"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be a number of seconds")
		return
	}
	end, err := strconv.ParseFloat(q.Get("end_time"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_time must be a number of seconds")
		return
	}

	outputFilename := q.Get("output_filename")
	if outputFilename == "" || outputFilename != filepath.Base(outputFilename) {
		writeError(w, http.StatusBadRequest, "output_filename must be a bare file name")
		return
	}
	outputPath := filepath.Join(r.cfg.SegmentsDir, outputFilename)

	result, err := r.engine.ExtractSegment(req.Context(), videoPath, start, end, outputPath)
	if err != nil {
		r.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Status:  "success",
		Message: "video segment extracted",
		Data:    result,
	})
}

// writeEngineError translates the engine's error kinds into HTTP statuses.
func (r *Router) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch search.KindOf(err) {
	case search.KindInvalidInput:
		status = http.StatusBadRequest
	case search.KindNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		r.log.Errorw("engine failure", "error", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Status: "error", Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
