package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"siipcoffee/internal/cart"
	"siipcoffee/internal/intent"
	"siipcoffee/internal/models"
)

// ConnectivityErrorText is the fixed reply shown when the backend cannot be
// reached. The simple chat path never retries automatically.
const ConnectivityErrorText = "Sorry, I'm having trouble connecting right now. Please try again in a moment."

// ErrBusy is returned when a send arrives while another is in flight.
// Sends are serialized per session; overlapping ones are dropped, not queued.
var ErrBusy = errors.New("chat: a message is already in flight")

// ErrClosed is returned for sends after the session was torn down.
var ErrClosed = errors.New("chat: session closed")

// Session owns one user's ordered, append-only chat log and the cart it
// drives. Each session is an explicitly owned object; there is no ambient
// shared chat state.
type Session struct {
	ID     string
	UserID string

	provider    intent.Provider
	interpreter *intent.Interpreter
	cart        *cart.Store

	mu       sync.Mutex
	messages []models.ChatMessage
	seq      int
	inFlight bool
	closed   bool
	push     func(text string) error
}

// NewSession creates a session backed by the given reply provider.
func NewSession(id, userID string, provider intent.Provider, store *cart.Store) *Session {
	return &Session{
		ID:          id,
		UserID:      userID,
		provider:    provider,
		interpreter: intent.NewInterpreter(),
		cart:        store,
	}
}

// SetPush routes outbound user text through fn instead of the reply
// provider. Replies then arrive asynchronously via Receive, so sends are
// not serialized against them.
func (s *Session) SetPush(fn func(text string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push = fn
}

// Cart returns the cart this session owns.
func (s *Session) Cart() *cart.Store {
	return s.cart
}

// Messages returns a copy of the message log in append order.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send processes one user turn: the user message is appended immediately
// (optimistic), the provider is consulted, and the bot reply is appended.
// Empty or whitespace-only input is a no-op, not an error. On provider
// failure a fixed connectivity reply is appended and the cart is left
// untouched.
func (s *Session) Send(ctx context.Context, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	push := s.push
	if push == nil {
		s.inFlight = true
	}
	user := s.appendLocked(models.ChatMessage{
		Sender: models.SenderUser,
		Text:   text,
	})
	s.mu.Unlock()

	if push != nil {
		if err := push(text); err != nil {
			return s.Append(models.ChatMessage{
				Sender: models.SenderBot,
				Text:   ConnectivityErrorText,
				Intent: "error",
			}), nil
		}
		return user, nil
	}

	reply, err := s.provider.Reply(ctx, s.UserID, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if s.closed {
		// Torn down while the call was in flight; drop the result instead
		// of mutating a dead session.
		return nil, ErrClosed
	}

	if err != nil {
		bot := s.appendLocked(models.ChatMessage{
			Sender: models.SenderBot,
			Text:   ConnectivityErrorText,
			Intent: "error",
		})
		return bot, nil
	}

	msg := models.ChatMessage{
		Sender:         models.SenderBot,
		Text:           reply.Response,
		Intent:         reply.Intent,
		SuggestedItems: reply.SuggestedItems,
		MenuData:       reply.MenuData,
		OrderIntent:    reply.OrderIntent,
	}
	if msg.SuggestedItems == nil {
		msg.SuggestedItems = []models.SuggestedItem{}
	}

	// Two-tier decode: a reply text that is itself JSON carrying a receipt
	// is surfaced structurally, not displayed as raw JSON.
	if receipt, ok := models.DecodeReplyText(reply.Response); ok {
		msg.Receipt = receipt
		if receipt.Message != "" {
			msg.Text = receipt.Message
		}
	}

	s.interpreter.Apply(s.cart, reply)

	bot := s.appendLocked(msg)
	return bot, nil
}

// Receive appends a server-pushed turn from the duplex channel and routes
// its order intent through the interpreter.
func (s *Session) Receive(payload *models.WSPayload) *models.ChatMessage {
	if payload == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	msg := models.ChatMessage{
		Sender:      models.SenderBot,
		Text:        payload.Message,
		Intent:      payload.Intent,
		OrderIntent: payload.OrderIntent,
	}
	if receipt, ok := models.DecodeReplyText(payload.Message); ok {
		msg.Receipt = receipt
		if receipt.Message != "" {
			msg.Text = receipt.Message
		}
	}

	s.interpreter.ApplyIntent(s.cart, payload.OrderIntent)
	return s.appendLocked(msg)
}

// Append adds a pre-built message to the log, used for checkout
// confirmations.
func (s *Session) Append(msg models.ChatMessage) *models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.appendLocked(msg)
}

// Close tears the session down. In-flight provider results arriving after
// Close are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// appendLocked stamps id and timestamp and appends. Caller holds s.mu.
func (s *Session) appendLocked(msg models.ChatMessage) *models.ChatMessage {
	s.seq++
	msg.ID = fmt.Sprintf("%s-%d", s.ID, s.seq)
	msg.Timestamp = time.Now()
	s.messages = append(s.messages, msg)
	return &s.messages[len(s.messages)-1]
}
