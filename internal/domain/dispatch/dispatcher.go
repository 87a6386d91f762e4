package dispatch

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/expertchat/expertchat/internal/domain/conversation"
	"github.com/expertchat/expertchat/internal/domain/session"
	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

// ErrorReply is appended as an assistant message when a send fails. The
// user's message stays in the transcript; nothing is rolled back.
const ErrorReply = "I apologize, but I encountered an error processing your message. Please try again."

// Session is the slice of the session manager the dispatcher needs.
type Session interface {
	State() session.Snapshot
	AccessToken() string
}

// Dispatcher turns user input into an optimistic transcript update plus a
// remote send. At most one send is in flight at a time.
type Dispatcher struct {
	store   *conversation.Store
	client  conversation.ChatClient
	session Session
	log     zerolog.Logger

	sending atomic.Bool
}

func NewDispatcher(store *conversation.Store, client conversation.ChatClient, sess Session, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:   store,
		client:  client,
		session: sess,
		log:     log,
	}
}

// Sending reports whether a send is currently in flight.
func (d *Dispatcher) Sending() bool {
	return d.sending.Load()
}

// Send appends the user's message optimistically, forwards it, and appends
// the assistant's reply. While a send is in flight further calls are dropped
// and return (nil, nil). On remote failure an error reply is appended and
// the underlying error is returned. A reply arriving after the user switched
// or deleted the targeted conversation is discarded.
func (d *Dispatcher) Send(ctx context.Context, text string) (*conversation.Message, error) {
	if !d.session.State().Authenticated() {
		return nil, apperrors.New(apperrors.LayerDomain, apperrors.KindUnauthorized, "not signed in", nil)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation(apperrors.LayerDomain, "message is empty")
	}

	if !d.sending.CompareAndSwap(false, true) {
		return nil, nil
	}
	defer d.sending.Store(false)

	// The target is fixed at send time; switching conversations mid-flight
	// makes the eventual reply stale.
	targetID := d.store.ActiveID()

	d.store.Append(conversation.Message{
		Role:      conversation.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})

	result, err := d.client.SendMessage(ctx, d.session.AccessToken(), targetID, text)
	if err != nil {
		d.log.Warn().Err(err).Str("conversation_id", targetID).Msg("send failed")
		d.store.ApplyReply(targetID, targetID, conversation.Message{
			Role:      conversation.RoleAssistant,
			Content:   ErrorReply,
			Timestamp: time.Now(),
			IsError:   true,
		})
		return nil, err
	}

	reply, applied := d.store.ApplyReply(targetID, result.ConversationID, conversation.Message{
		Role:      conversation.RoleAssistant,
		Content:   result.Reply,
		Timestamp: time.Now(),
		Metadata:  result.Raw,
	})
	if !applied {
		d.log.Debug().Str("conversation_id", targetID).Msg("reply arrived for a conversation no longer active, discarded")
		return nil, nil
	}

	d.store.LoadSummaries(ctx)
	return &reply, nil
}
