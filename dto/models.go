package dto

import (
	"path/filepath"
	"strings"
)

type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
)

var supportedExtensions = map[string]FileType{
	".pdf":  FileTypePDF,
	".png":  FileTypeImage,
	".jpg":  FileTypeImage,
	".jpeg": FileTypeImage,
	".bmp":  FileTypeImage,
	".tif":  FileTypeImage,
	".tiff": FileTypeImage,
}

// DetectFileType maps a file name to the kind of document it holds.
func DetectFileType(filename string) (FileType, error) {
	ft, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrUnsupportedFile
	}
	return ft, nil
}

type DocumentQuality struct {
	TextScore     float64  `json:"text_score"`
	OcrConfidence float64  `json:"ocr_confidence"`
	Source        string   `json:"source"` // "pdf_text", "ocr"
	Engine        string   `json:"engine,omitempty"`
	FinalScore    float64  `json:"final_score"`
	Issues        []string `json:"issues"`
}
