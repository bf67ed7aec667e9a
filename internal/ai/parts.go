package ai

// ContentPart is one element of a multimodal user message: inline text,
// an image data URL, or a reference to a previously registered file.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
	File     *FileRef  `json:"file,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type FileRef struct {
	FileID string `json:"file_id"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

func ImagePart(dataURL string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}}
}

func FilePart(fileID string) ContentPart {
	return ContentPart{Type: "file", File: &FileRef{FileID: fileID}}
}
