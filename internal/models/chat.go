package models

// History turn roles understood by the completion provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryTurn is one prior message in the conversation, supplied by the caller.
type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatTurnRequest is the payload sent to the chat endpoint.
type ChatTurnRequest struct {
	Message     string        `json:"message"`
	Context     string        `json:"context"`
	ChatHistory []HistoryTurn `json:"chatHistory,omitempty"`
}

// ChatTurnResponse is the assistant reply.
type ChatTurnResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the failure envelope shared by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
