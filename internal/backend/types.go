package backend

import "github.com/oukeidos/panetrans/internal/models"

// UploadResponse is the body of POST /upload.
type UploadResponse struct {
	Success     bool                 `json:"success"`
	Content     []models.ContentItem `json:"content"`
	HasFormat   bool                 `json:"has_format,omitempty"`
	HTMLContent *string              `json:"html_content,omitempty"`
	Filename    string               `json:"filename,omitempty"`
	FileType    string               `json:"file_type,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Content     []models.ContentItem `json:"content"`
	TargetLang  string               `json:"target_lang"`
	SourceLang  string               `json:"source_lang"`
	HTMLContent *string              `json:"html_content"`
	AIModel     string               `json:"ai_model"`
}

// TranslateResponse is the body returned by POST /translate.
type TranslateResponse struct {
	Success           bool                    `json:"success"`
	TranslatedContent []models.TranslatedItem `json:"translated_content"`
	TranslatedHTML    *string                 `json:"translated_html,omitempty"`
	Error             string                  `json:"error,omitempty"`
}

// SingleRequest is the body of POST /translate-single.
type SingleRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang"`
}

type singleResponse struct {
	Success     bool   `json:"success"`
	Translation string `json:"translation"`
	Error       string `json:"error,omitempty"`
}

// ImageRequest is the body of POST /translate_image.
type ImageRequest struct {
	ImageBase64 string `json:"image_base64"`
	TargetLang  string `json:"target_lang"`
	AIModel     string `json:"ai_model"`
}

type imageResponse struct {
	Success     bool   `json:"success"`
	Translation string `json:"translation"`
	Error       string `json:"error,omitempty"`
}

// ExportRequest is the body of POST /export.
type ExportRequest struct {
	Content         []models.TranslatedItem `json:"content"`
	OriginalContent []models.ContentItem    `json:"original_content"`
	Format          models.ExportFormat     `json:"format"`
	Filename        string                  `json:"filename"`
	HasFormat       bool                    `json:"has_format"`
	TranslatedHTML  *string                 `json:"translated_html"`
	Bilingual       bool                    `json:"bilingual"`
}

// ExportFile is a generated export document.
type ExportFile struct {
	Data        []byte
	ContentType string
	// Filename is the name suggested by Content-Disposition, if any.
	Filename string
}

type errorEnvelope struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}
