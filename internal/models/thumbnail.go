package models

import "time"

type ThumbnailResult struct {
	Name     string `json:"name"`
	Key      string `json:"key"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	FileSize int64  `json:"file_size"`
}

type UploadResponse struct {
	Key        string            `json:"key"`
	URL        string            `json:"url"`
	Thumbnails []ThumbnailResult `json:"thumbnails"`
	UploadedAt time.Time         `json:"uploaded_at"`
}

type ThumbnailURLs struct {
	Key  string            `json:"key"`
	URLs map[string]string `json:"urls"`
}
