package models

// ImageData carries raw image bytes for a multimodal request.
type ImageData struct {
	MIMEType string
	Data     []byte
}

// GenerateRequest is one logical generation operation handed to the GenAI
// client. Prompt is required; the remaining fields are optional.
type GenerateRequest struct {
	Prompt            string
	SystemInstruction string
	Image             *ImageData
	History           []ConversationTurn
}
