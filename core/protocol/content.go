package protocol

// PartType discriminates ContentPart values.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image_url"
)

// ImageDetail is the fidelity hint passed to vision models.
type ImageDetail string

const (
	DetailLow  ImageDetail = "low"
	DetailHigh ImageDetail = "high"
	DetailAuto ImageDetail = "auto"
)

// ImageURL references an image by URL. Inline images use data URLs
// (data:image/jpeg;base64,...).
type ImageURL struct {
	URL    string      `json:"url"`
	Detail ImageDetail `json:"detail,omitempty"`
}

// ContentPart is one segment of a multimodal user message.
type ContentPart struct {
	Type     PartType  `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// TextPart creates a text segment.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// ImagePart creates an image segment.
func ImagePart(url string, detail ImageDetail) ContentPart {
	return ContentPart{Type: PartImage, ImageURL: &ImageURL{URL: url, Detail: detail}}
}
