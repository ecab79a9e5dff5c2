package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"siipcoffee/internal/models"
)

func wsServer(t *testing.T, handler func(conn *websocket.Conn, r *http.Request)) (string, func()) {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		handler(conn, r)
	}))
	return "ws" + strings.TrimPrefix(srv.URL, "http"), srv.Close
}

func TestDuplexRoutesEnvelopesIntoSession(t *testing.T) {
	envelope := `{"success": true, "data": {"message": "Added 2 Espresso", "intent": "create_order", "order_intent": {"action": "create_order", "items": [{"menu_id": "E001", "name": "Espresso", "price": 12000, "quantity": 2}]}}}`

	gotAuth := make(chan string, 1)
	url, closeSrv := wsServer(t, func(conn *websocket.Conn, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")
		conn.WriteMessage(websocket.TextMessage, []byte(envelope))
		// keep the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeSrv()

	s := newTestSession(&scriptedProvider{})
	d := NewDuplex(url, "tok", s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	for len(s.Messages()) == 0 {
		time.Sleep(time.Millisecond)
	}

	if auth := <-gotAuth; auth != "Bearer tok" {
		t.Fatalf("Authorization = %q, want %q", auth, "Bearer tok")
	}

	msgs := s.Messages()
	if msgs[0].Sender != models.SenderBot {
		t.Fatalf("sender = %q, want bot", msgs[0].Sender)
	}
	if msgs[0].Text != "Added 2 Espresso" {
		t.Fatalf("text = %q", msgs[0].Text)
	}
	if s.Cart().TotalPrice() != 24000 {
		t.Fatalf("cart total = %v, want 24000", s.Cart().TotalPrice())
	}
}

func TestDuplexDropsMalformedFrames(t *testing.T) {
	url, closeSrv := wsServer(t, func(conn *websocket.Conn, r *http.Request) {
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"success": true, "data": {"message": "hello"}}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeSrv()

	s := newTestSession(&scriptedProvider{})
	d := NewDuplex(url, "tok", s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	for len(s.Messages()) == 0 {
		time.Sleep(time.Millisecond)
	}

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected the malformed frame to be dropped, got %d messages", len(msgs))
	}
	if msgs[0].Text != "hello" {
		t.Fatalf("text = %q", msgs[0].Text)
	}
}

func TestDuplexSendWritesUserText(t *testing.T) {
	frames := make(chan string, 4)
	url, closeSrv := wsServer(t, func(conn *websocket.Conn, r *http.Request) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- string(data)
		}
	})
	defer closeSrv()

	s := newTestSession(&scriptedProvider{})
	d := NewDuplex(url, "tok", s)
	s.SetPush(d.Send)

	if err := d.Send("too early"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send before connect: error = %v, want ErrClosed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// Raw sends fail until the channel is connected.
	for d.Send("ping") != nil {
		time.Sleep(time.Millisecond)
	}
	<-frames

	if _, err := s.Send(context.Background(), "two espresso"); err != nil {
		t.Fatalf("session Send() error = %v", err)
	}

	select {
	case frame := <-frames:
		if frame != "two espresso" {
			t.Fatalf("frame = %q, want the user text", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the outbound frame")
	}

	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Sender != models.SenderUser {
		t.Fatalf("expected only the optimistic user turn, got %+v", msgs)
	}
}

func TestDuplexStopsOnCancel(t *testing.T) {
	url, closeSrv := wsServer(t, func(conn *websocket.Conn, r *http.Request) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer closeSrv()

	s := newTestSession(&scriptedProvider{})
	d := NewDuplex(url, "tok", s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
