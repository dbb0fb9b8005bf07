// Package chatapi implements the HTTP client for the assistant's generation
// backend: the streaming chat endpoint, its synchronous fallback, and the
// stop/reset side channel.
package chatapi

const (
	streamPath = "/api/chat/stream"
	chatPath   = "/api/chat"
	stopPath   = "/api/chat/stop"
	resetPath  = "/api/chat/reset"
)

// apiRequest is the JSON body of both the streaming and fallback chat calls.
type apiRequest struct {
	ConversationID string       `json:"conversation_id"`
	CourseID       string       `json:"course_id,omitempty"`
	Question       string       `json:"question"`
	History        []apiHistory `json:"history,omitempty"`
}

// apiHistory is one prior turn of context.
type apiHistory struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// apiStopRequest is the body of the stop side-channel call.
type apiStopRequest struct {
	RequestID string `json:"request_id"`
}

// apiControlResponse is the body returned by both side-channel endpoints.
type apiControlResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// apiErrorResponse is the body of a non-2xx response.
type apiErrorResponse struct {
	Error string `json:"error"`
}
