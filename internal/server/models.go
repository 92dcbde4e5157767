package server

// ChatRequest is the inbound chat payload. Message is untrusted free text
// and may contain zero or more URLs.
type ChatRequest struct {
	Message string `json:"message"`
}

// HTTPError is the uniform JSON error body.
type HTTPError struct {
	Error string `json:"error"`
}
