package api

import "jamesfarrell.me/video-search/internal/storage/models"

type uploadData struct {
	Filename       string               `json:"filename"`
	FilePath       string               `json:"file_path"`
	FileSize       int64                `json:"file_size"`
	IndexingResult models.IngestSummary `json:"indexing_result"`
}

type uploadResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Data    uploadData `json:"data"`
}

type searchResult struct {
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Duration   float64 `json:"duration"`
	VideoPath  string  `json:"video_path"`
	ChunkIndex int     `json:"chunk_index"`
}

type searchResponse struct {
	Status       string         `json:"status"`
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Results      []searchResult `json:"results"`
}

type indexInfoResponse struct {
	Status    string            `json:"status"`
	IndexInfo models.IndexStats `json:"index_info"`
}

type extractResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Data    models.ExtractResult `json:"data"`
}

type errorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}
