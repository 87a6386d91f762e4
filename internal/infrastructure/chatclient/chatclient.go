// Package chatclient talks to the backend's chat and conversation endpoints.
package chatclient

import (
	"context"
	"fmt"

	"github.com/expertchat/expertchat/internal/domain/conversation"
	"github.com/expertchat/expertchat/internal/infrastructure/apiclient"
)

// Client implements conversation.ChatClient against the HTTP backend.
type Client struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

var _ conversation.ChatClient = (*Client)(nil)

type sendBody struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type sendResponse struct {
	Message        string         `json:"message"`
	ConversationID string         `json:"conversation_id"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type listResponse struct {
	Conversations []summaryBody `json:"conversations"`
}

type summaryBody struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

type messageBody struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type conversationBody struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []messageBody `json:"messages"`
}

// SendMessage forwards content to the assistant. An empty conversationID
// asks the backend to start a new conversation; the returned id identifies
// it either way.
func (c *Client) SendMessage(ctx context.Context, accessToken, conversationID, content string) (conversation.SendResult, error) {
	var body sendResponse
	resp, err := c.api.R(ctx, accessToken).
		SetBody(sendBody{Message: content, ConversationID: conversationID}).
		SetResult(&body).
		Post(c.api.Endpoint("/chat"))
	if err != nil {
		return conversation.SendResult{}, c.api.WrapTransport(err, "chat request failed")
	}
	if resp.IsError() {
		return conversation.SendResult{}, c.api.ErrorFrom(resp, "chat failed")
	}
	return conversation.SendResult{
		Reply:          body.Message,
		ConversationID: body.ConversationID,
		Raw:            body.Metadata,
	}, nil
}

func (c *Client) ListConversations(ctx context.Context, accessToken string) ([]conversation.Summary, error) {
	var body listResponse
	resp, err := c.api.R(ctx, accessToken).
		SetResult(&body).
		Get(c.api.Endpoint("/chat/conversations"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "conversation list request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "conversation list failed")
	}

	summaries := make([]conversation.Summary, 0, len(body.Conversations))
	for _, s := range body.Conversations {
		summaries = append(summaries, conversation.Summary{
			ID:        s.ID,
			Title:     s.Title,
			UpdatedAt: apiclient.ParseTimestamp(s.UpdatedAt),
		})
	}
	return summaries, nil
}

func (c *Client) GetConversation(ctx context.Context, accessToken, id string) (conversation.Conversation, error) {
	var body conversationBody
	resp, err := c.api.R(ctx, accessToken).
		SetResult(&body).
		Get(c.api.Endpoint(fmt.Sprintf("/chat/conversations/%s", id)))
	if err != nil {
		return conversation.Conversation{}, c.api.WrapTransport(err, "conversation fetch request failed")
	}
	if resp.IsError() {
		return conversation.Conversation{}, c.api.ErrorFrom(resp, "conversation fetch failed")
	}

	conv := conversation.Conversation{ID: body.ID, Title: body.Title}
	conv.Messages = make([]conversation.Message, 0, len(body.Messages))
	for _, m := range body.Messages {
		conv.Messages = append(conv.Messages, conversation.Message{
			Role:      conversation.Role(m.Role),
			Content:   m.Content,
			Timestamp: apiclient.ParseTimestamp(m.Timestamp),
		})
	}
	return conv, nil
}

func (c *Client) DeleteConversation(ctx context.Context, accessToken, id string) error {
	resp, err := c.api.R(ctx, accessToken).
		Delete(c.api.Endpoint(fmt.Sprintf("/chat/conversations/%s", id)))
	if err != nil {
		return c.api.WrapTransport(err, "conversation delete request failed")
	}
	if resp.IsError() {
		return c.api.ErrorFrom(resp, "conversation delete failed")
	}
	return nil
}
