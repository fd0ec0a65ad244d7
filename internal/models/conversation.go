package models

// Conversation roles as understood by the Gemini API.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ConversationTurn is one exchange in a follow-up chat session. The caller
// owns the ordered turn list and appends both sides after each exchange.
type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
