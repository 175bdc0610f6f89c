package dto

// UploadedFile describes a stored upload.
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Type         string `json:"type"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}
