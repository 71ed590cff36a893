package assessment

type SourceDTO struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type AssessmentResponse struct {
	Text    string      `json:"text"`
	Sources []SourceDTO `json:"sources,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
