package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"siipcoffee/internal/cart"
	"siipcoffee/internal/models"
)

// scriptedProvider returns canned replies or errors in order.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []*models.ChatReply
	errs    []error
	calls   int
	block   chan struct{}
}

func (p *scriptedProvider) Reply(ctx context.Context, userID, message string) (*models.ChatReply, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return &models.ChatReply{Response: "ok"}, nil
}

func newTestSession(p *scriptedProvider) *Session {
	return NewSession("s1", "u1", p, cart.NewStore())
}

func TestSendAppendsUserThenBot(t *testing.T) {
	p := &scriptedProvider{replies: []*models.ChatReply{
		{Response: "Here's our menu!", Intent: "view_menu"},
	}}
	s := newTestSession(p)

	bot, err := s.Send(context.Background(), "show me the menu")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if bot == nil || bot.Text != "Here's our menu!" {
		t.Fatalf("unexpected bot reply: %+v", bot)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != models.SenderUser || msgs[0].Text != "show me the menu" {
		t.Errorf("first message should be the optimistic user turn, got %+v", msgs[0])
	}
	if msgs[1].Sender != models.SenderBot {
		t.Errorf("second message should be the bot reply, got %+v", msgs[1])
	}
	if msgs[0].ID == msgs[1].ID {
		t.Error("message ids must be unique")
	}
}

func TestSendEmptyInputIsNoop(t *testing.T) {
	p := &scriptedProvider{}
	s := newTestSession(p)

	for _, input := range []string{"", "   ", "\n\t"} {
		bot, err := s.Send(context.Background(), input)
		if err != nil {
			t.Fatalf("Send(%q) error = %v", input, err)
		}
		if bot != nil {
			t.Errorf("Send(%q) produced a reply", input)
		}
	}
	if len(s.Messages()) != 0 {
		t.Error("empty input must not append messages")
	}
	if p.calls != 0 {
		t.Error("empty input must not reach the provider")
	}
}

func TestSendFailureAppendsConnectivityError(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("connection refused")}}
	s := newTestSession(p)
	s.Cart().AddItem(models.MenuItem{ID: "E001", Name: "Espresso", Price: 12000}, 1)

	bot, err := s.Send(context.Background(), "two lattes please")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if bot.Text != ConnectivityErrorText {
		t.Errorf("bot text = %q, want fixed connectivity message", bot.Text)
	}

	// Failures never mutate the cart
	if got := s.Cart().TotalItems(); got != 1 {
		t.Errorf("cart changed on failure: total items = %d, want 1", got)
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (no automatic retry)", p.calls)
	}
}

func TestSendAppliesOrderIntent(t *testing.T) {
	p := &scriptedProvider{replies: []*models.ChatReply{
		{
			Response: "Added to your order!",
			Intent:   "create_order",
			OrderIntent: &models.OrderIntent{
				Action: models.ActionCreateOrder,
				Items: []models.OrderIntentItem{
					{MenuID: "E001", Name: "Espresso", Price: 12000, Quantity: 2},
				},
			},
		},
	}}
	s := newTestSession(p)

	if _, err := s.Send(context.Background(), "two espresso"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	lines := s.Cart().Lines()
	if len(lines) != 1 || lines[0].ID != "E001" || lines[0].Quantity != 2 {
		t.Fatalf("expected one E001 x2 line, got %+v", lines)
	}
	if got := s.Cart().TotalPrice(); got != 24000 {
		t.Errorf("TotalPrice() = %v, want 24000", got)
	}
}

func TestSendDecodesReceiptDisguisedAsText(t *testing.T) {
	p := &scriptedProvider{replies: []*models.ChatReply{
		{Response: `{"receipt":{"order_id":"ORD-X-1","items":[{"name":"Espresso","qty":2,"price":12000}],"total_price":24000,"payment_method":"cash","message":"Order completed! Total: 24,000"}}`},
	}}
	s := newTestSession(p)

	bot, err := s.Send(context.Background(), "pay with cash")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if bot.Receipt == nil {
		t.Fatal("expected structured receipt, not raw JSON text")
	}
	if bot.Receipt.OrderID != "ORD-X-1" || bot.Receipt.TotalPrice != 24000 {
		t.Errorf("receipt = %+v", bot.Receipt)
	}
	if bot.Text != "Order completed! Total: 24,000" {
		t.Errorf("display text = %q, want receipt message", bot.Text)
	}
}

func TestSendPlainTextThatLooksLikeJSONDegradesGracefully(t *testing.T) {
	p := &scriptedProvider{replies: []*models.ChatReply{
		{Response: `{"not_a_receipt": true}`},
	}}
	s := newTestSession(p)

	bot, err := s.Send(context.Background(), "hm")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if bot.Receipt != nil {
		t.Error("JSON without a receipt field must stay plain text")
	}
	if bot.Text != `{"not_a_receipt": true}` {
		t.Errorf("text = %q", bot.Text)
	}
}

func TestSendSerializedPerSession(t *testing.T) {
	block := make(chan struct{})
	p := &scriptedProvider{block: block}
	s := newTestSession(p)

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		firstDone <- err
	}()

	// Wait for the first send to be in flight
	for len(s.Messages()) != 1 {
		time.Sleep(time.Millisecond)
	}

	_, err := s.Send(context.Background(), "second")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping send error = %v, want ErrBusy", err)
	}

	close(block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first send error = %v", err)
	}

	// The dropped send must not have appended anything
	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages (first turn only), got %d", len(msgs))
	}
}

func TestSendAfterCloseIsRejected(t *testing.T) {
	p := &scriptedProvider{}
	s := newTestSession(p)
	s.Close()

	_, err := s.Send(context.Background(), "hello")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("error = %v, want ErrClosed", err)
	}
}

func TestCloseDuringFlightDiscardsResult(t *testing.T) {
	block := make(chan struct{})
	p := &scriptedProvider{block: block}
	s := newTestSession(p)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		done <- err
	}()
	for len(s.Messages()) != 1 {
		time.Sleep(time.Millisecond)
	}

	s.Close()
	close(block)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("in-flight send after close: error = %v, want ErrClosed", err)
	}
	if len(s.Messages()) != 1 {
		t.Error("no bot message may be appended after teardown")
	}
}

func TestSendRoutesThroughPushChannel(t *testing.T) {
	p := &scriptedProvider{}
	s := newTestSession(p)
	var pushed []string
	s.SetPush(func(text string) error {
		pushed = append(pushed, text)
		return nil
	})

	user, err := s.Send(context.Background(), "two espresso")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if user == nil || user.Sender != models.SenderUser || user.Text != "two espresso" {
		t.Fatalf("expected the user turn back, got %+v", user)
	}
	if len(pushed) != 1 || pushed[0] != "two espresso" {
		t.Fatalf("pushed = %v", pushed)
	}
	if p.calls != 0 {
		t.Error("push mode must not consult the reply provider")
	}
	// The reply arrives later via Receive, so only the user turn is logged.
	if len(s.Messages()) != 1 {
		t.Errorf("expected 1 message, got %d", len(s.Messages()))
	}
}

func TestSendPushFailureAppendsConnectivityError(t *testing.T) {
	s := newTestSession(&scriptedProvider{})
	s.SetPush(func(string) error { return errors.New("channel down") })

	bot, err := s.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if bot == nil || bot.Text != ConnectivityErrorText {
		t.Fatalf("bot = %+v, want fixed connectivity message", bot)
	}
	if len(s.Messages()) != 2 {
		t.Errorf("expected user turn plus error reply, got %d messages", len(s.Messages()))
	}
}

func TestReceiveRoutesOrderIntent(t *testing.T) {
	p := &scriptedProvider{}
	s := newTestSession(p)

	msg := s.Receive(&models.WSPayload{
		Message: "Two espresso coming up!",
		Intent:  "create_order",
		OrderIntent: &models.OrderIntent{
			Action: models.ActionCreateOrder,
			Items: []models.OrderIntentItem{
				{MenuID: "E001", Name: "Espresso", Price: 12000, Quantity: 2},
			},
		},
	})

	if msg == nil || msg.Sender != models.SenderBot {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if got := s.Cart().TotalItems(); got != 2 {
		t.Errorf("cart total items = %d, want 2", got)
	}
}
