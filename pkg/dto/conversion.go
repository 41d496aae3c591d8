package dto

import "time"

// ConversionSummary reports the outcome of a rasterize run
type ConversionSummary struct {
	InputPath   string `json:"input_path"`
	OutputPath  string `json:"output_path"`
	PageCount   int    `json:"page_count"`
	DPI         int    `json:"dpi"`
	Format      string `json:"format"`
	Engine      string `json:"engine"`
	OutputBytes int    `json:"output_bytes"`
}

// PDFFileInfo describes a PDF file found under the working directory
type PDFFileInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}
