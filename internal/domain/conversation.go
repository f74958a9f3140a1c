package domain

// ConversationRef carries everything needed to address a reply back to
// the conversation a message arrived on.
type ConversationRef struct {
	ConversationID string
	ActivityID     string
	ServiceURL     string
	BotID          string
	UserID         string
}
