package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"siipcoffee/internal/models"
)

// ReconnectDelay is the fixed wait between reconnect attempts. The backend
// contract has no backoff growth and no attempt cap; see the open question
// in DESIGN.md before changing either.
const ReconnectDelay = 3 * time.Second

// Duplex maintains a persistent bidirectional channel to the backend,
// authenticated with a bearer token. Envelopes arriving from the server are
// routed into the session; outbound user text is written raw.
type Duplex struct {
	url     string
	token   string
	session *Session

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewDuplex creates a duplex channel bound to a session. Run must be
// called to connect.
func NewDuplex(wsURL, token string, session *Session) *Duplex {
	return &Duplex{
		url:     wsURL,
		token:   token,
		session: session,
	}
}

// Run connects and reads until the context is cancelled. Every channel
// close schedules exactly one reconnect attempt after a fixed delay,
// indefinitely. Cancellation on session teardown is the only exit.
func (d *Duplex) Run(ctx context.Context) {
	for {
		if err := d.connectAndRead(ctx); err != nil {
			log.Printf("duplex channel closed: %v", err)
		}

		select {
		case <-ctx.Done():
			d.closeConn()
			return
		case <-time.After(ReconnectDelay):
		}
	}
}

// Send writes raw user text to the channel.
func (d *Duplex) Send(text string) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()
	if conn == nil {
		return ErrClosed
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (d *Duplex) connectAndRead(ctx context.Context) error {
	header := http.Header{}
	if d.token != "" {
		header.Set("Authorization", "Bearer "+d.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.url, header)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()

	defer d.closeConn()

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("duplex read error: %v", err)
			}
			return err
		}
		d.handleMessage(data)
	}
}

func (d *Duplex) handleMessage(data []byte) {
	var env models.WSEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("duplex: dropping malformed envelope: %v", err)
		return
	}
	if !env.Success || env.Data == nil {
		if env.Error != "" {
			log.Printf("duplex: server error: %s", env.Error)
		}
		return
	}
	d.session.Receive(env.Data)
}

func (d *Duplex) closeConn() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}
