// Package conversation owns the conversation list and the active
// conversation's message sequence under optimistic updates.
package conversation

import (
	"context"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Summary is the lightweight conversation record used for the list view.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one entry in a conversation. IDs are assigned locally, are
// unique within the store, and increase monotonically in creation order.
type Message struct {
	ID        int64          `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	IsError   bool           `json:"is_error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Conversation is a server-tracked message sequence. Only the active
// conversation is held in memory at a time.
type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// SendResult is the reply payload of the chat endpoint. Raw preserves the
// full decoded body for message metadata.
type SendResult struct {
	Reply          string
	ConversationID string
	Raw            map[string]any
}

// ChatClient is the remote conversation collaborator. A conversation id of
// "" means none: the service creates a conversation on the first send.
type ChatClient interface {
	SendMessage(ctx context.Context, accessToken, conversationID, content string) (SendResult, error)
	ListConversations(ctx context.Context, accessToken string) ([]Summary, error)
	GetConversation(ctx context.Context, accessToken, id string) (Conversation, error)
	DeleteConversation(ctx context.Context, accessToken, id string) error
}

// TokenProvider supplies the bearer token for authenticated calls. The
// session manager implements it.
type TokenProvider interface {
	AccessToken() string
}
