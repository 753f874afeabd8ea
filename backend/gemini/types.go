// Package gemini provides the HTTP client for the Google Gemini
// generateContent API.
package gemini

// Part is a single piece of message content.
type Part struct {
	Text string `json:"text"`
}

// Content is one message in the request contents, or the model's reply.
// Role is "user" or "model"; it is omitted on systemInstruction.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig carries model sampling parameters.
type GenerationConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
}

// GenerateRequest is the body for models/{model}:generateContent.
type GenerateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one generated completion.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GenerateResponse is the body returned by generateContent.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// apiError is the error envelope the API returns on non-200 responses.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// UserText builds a user-role content from plain text.
func UserText(text string) Content {
	return Content{Role: "user", Parts: []Part{{Text: text}}}
}

// ModelText builds a model-role content from plain text.
func ModelText(text string) Content {
	return Content{Role: "model", Parts: []Part{{Text: text}}}
}
