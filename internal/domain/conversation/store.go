package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

// Store holds the conversation summaries and the active conversation. All
// state behind it mutates atomically: a failed remote call leaves the
// previous state intact.
type Store struct {
	client ChatClient
	tokens TokenProvider
	log    zerolog.Logger

	mu        sync.Mutex
	summaries []Summary
	activeID  string
	messages  []Message
	nextID    int64

	reload singleflight.Group
}

// NewStore constructs a Store. Message IDs are seeded from the wall clock so
// they stay monotonic across restarts within one conversation view.
func NewStore(client ChatClient, tokens TokenProvider, log zerolog.Logger) *Store {
	return &Store{
		client: client,
		tokens: tokens,
		log:    log,
		nextID: time.Now().UnixMilli(),
	}
}

// Summaries returns a copy of the current summary list.
func (s *Store) Summaries() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Summary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// ActiveID returns the active conversation id, or "" when none is active.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Messages returns a copy of the active conversation's message sequence.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LoadSummaries fetches the conversation list and replaces the in-memory
// copy. It never fails loudly: on error the previous list is kept and the
// current list is returned. Concurrent reloads are coalesced.
func (s *Store) LoadSummaries(ctx context.Context) []Summary {
	// Coalesced callers piggyback on the first caller's fetch, so the fetch
	// is detached from that caller's cancellation; its values still flow.
	fetchCtx := context.WithoutCancel(ctx)
	_, _, _ = s.reload.Do("summaries", func() (any, error) {
		summaries, err := s.client.ListConversations(fetchCtx, s.tokens.AccessToken())
		if err != nil {
			s.log.Warn().Err(err).Msg("conversation list reload failed, keeping previous list")
			return nil, nil
		}
		s.mu.Lock()
		s.summaries = summaries
		s.mu.Unlock()
		return nil, nil
	})
	return s.Summaries()
}

// Select loads a conversation and makes it active. The active id and the
// message sequence are replaced together; a failed fetch changes neither.
func (s *Store) Select(ctx context.Context, id string) error {
	conv, err := s.client.GetConversation(ctx, s.tokens.AccessToken(), id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.activeID = conv.ID
	s.messages = make([]Message, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		msg.ID = s.nextIDLocked()
		s.messages = append(s.messages, msg)
	}
	s.mu.Unlock()
	return nil
}

// NewConversation clears the active conversation locally. Nothing is created
// server-side until the first message is sent.
func (s *Store) NewConversation() {
	s.mu.Lock()
	s.activeID = ""
	s.messages = nil
	s.mu.Unlock()
}

// Delete removes a conversation after the caller-supplied confirmation.
// Declining is a no-op with no remote call. On success the summaries are
// reloaded and, if the deleted conversation was active, the active state is
// cleared synchronously — even when the reload fails. On remote failure the
// active state is untouched and the error surfaces.
func (s *Store) Delete(ctx context.Context, id string, confirm func() bool) error {
	if id == "" {
		return apperrors.Validation(apperrors.LayerDomain, "conversation id is required")
	}
	if confirm != nil && !confirm() {
		return nil
	}

	if err := s.client.DeleteConversation(ctx, s.tokens.AccessToken(), id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.activeID == id {
		s.activeID = ""
		s.messages = nil
	}
	s.mu.Unlock()

	s.LoadSummaries(ctx)
	return nil
}

// Append adds a message to the active conversation, assigning its id and
// timestamp, and returns the stored copy.
func (s *Store) Append(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(msg)
}

func (s *Store) appendLocked(msg Message) Message {
	msg.ID = s.nextIDLocked()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.messages = append(s.messages, msg)
	return msg
}

func (s *Store) nextIDLocked() int64 {
	if now := time.Now().UnixMilli(); now > s.nextID {
		s.nextID = now
	}
	s.nextID++
	return s.nextID
}

// ApplyReply appends a reply only if the store is still on the conversation
// the originating send targeted; a send completing after a switch or delete
// is stale and discarded. For a send that started a brand-new conversation
// (target ""), the returned id becomes the active id. Reports whether the
// reply was applied.
func (s *Store) ApplyReply(targetID, returnedID string, msg Message) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != targetID {
		return Message{}, false
	}
	stored := s.appendLocked(msg)
	if targetID == "" && returnedID != "" {
		s.activeID = returnedID
	}
	return stored, true
}
