package chatclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertchat/expertchat/internal/domain/conversation"
	"github.com/expertchat/expertchat/internal/infrastructure/apiclient"
	"github.com/expertchat/expertchat/internal/infrastructure/chatclient"
	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

func newClient(t *testing.T, handler http.HandlerFunc) *chatclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return chatclient.New(apiclient.New("chat", srv.URL, 2*time.Second))
}

func TestSendMessageOmitsConversationIDWhenNew(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["message"])
		_, present := body["conversation_id"]
		assert.False(t, present, "a new conversation must not send an id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"hi there","conversation_id":"c1"}`))
	})

	result, err := c.SendMessage(context.Background(), "tok", "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", result.Reply)
	assert.Equal(t, "c1", result.ConversationID)
}

func TestSendMessageCarriesExistingConversationID(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c1", body["conversation_id"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"reply","conversation_id":"c1"}`))
	})

	result, err := c.SendMessage(context.Background(), "tok", "c1", "more")
	require.NoError(t, err)
	assert.Equal(t, "c1", result.ConversationID)
}

func TestListConversationsMapsSummaries(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/conversations", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"conversations":[{"id":"c1","title":"First","updated_at":"2026-02-01T12:00:00Z"},{"id":"c2","title":"Second"}]}`))
	})

	summaries, err := c.ListConversations(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "First", summaries[0].Title)
	assert.Equal(t, 2026, summaries[0].UpdatedAt.Year())
	assert.True(t, summaries[1].UpdatedAt.IsZero())
}

func TestGetConversationMapsMessages(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/conversations/c1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","title":"First","messages":[
			{"role":"user","content":"hi","timestamp":"2026-02-01T12:00:00"},
			{"role":"assistant","content":"hello","timestamp":"2026-02-01T12:00:01"}]}`))
	})

	conv, err := c.GetConversation(context.Background(), "tok", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", conv.ID)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, conversation.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, conversation.RoleAssistant, conv.Messages[1].Role)
}

func TestDeleteConversation(t *testing.T) {
	var called bool
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/chat/conversations/c1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteConversation(context.Background(), "tok", "c1"))
	assert.True(t, called)
}

func TestExpiredTokenMapsToUnauthorized(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	})

	_, err := c.ListConversations(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}
