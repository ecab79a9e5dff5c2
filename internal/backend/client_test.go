package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatDecodesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"response": "Great choice!",
			"intent": "category_recommendation",
			"suggested_items": [
				{"id": "E001", "name": "Espresso", "price": 12000, "description": "Espresso."},
				"Cappuccino"
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	reply, err := c.Chat(context.Background(), ChatRequest{Message: "espresso please", UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "Great choice!", reply.Response)
	assert.Equal(t, "category_recommendation", reply.Intent)
	require.Len(t, reply.SuggestedItems, 2)
	assert.True(t, reply.SuggestedItems[0].Priced())
	assert.Equal(t, "E001", reply.SuggestedItems[0].Item.ID)
	assert.False(t, reply.SuggestedItems[1].Priced())
	assert.Equal(t, "Cappuccino", reply.SuggestedItems[1].Name)
}

func TestChatNetworkErrorType(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.Chat(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)

	var nerr *NetworkError
	assert.True(t, errors.As(err, &nerr), "expected NetworkError, got %T", err)
}

func TestNon2xxSurfacesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error": "model overloaded"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Chat(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)

	var berr *BackendError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, http.StatusBadGateway, berr.Status)
	assert.Equal(t, "model overloaded", berr.Message)
}

func TestMenuDefensiveDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// malformed category values degrade to empty, never error
		w.Write([]byte(`{
			"espresso_based": [{"id": "E001", "name": "Espresso", "price": 12000}],
			"pastry": null,
			"broken": "not an array"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	catalog, err := c.Menu(context.Background())
	require.NoError(t, err)

	assert.Len(t, catalog["espresso_based"], 1)
	assert.NotNil(t, catalog["pastry"])
	assert.Empty(t, catalog["pastry"])
	assert.NotNil(t, catalog["broken"])
	assert.Empty(t, catalog["broken"])
}

func TestCompleteOrderParsesReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/order/u1/complete", r.URL.Path)
		require.Equal(t, "cash", r.URL.Query().Get("payment_method"))
		w.Write([]byte(`{
			"success": true,
			"receipt": {
				"order_id": "ORD-u1-1700000000",
				"items": [{"name": "Espresso", "qty": 2, "price": 12000}],
				"total_price": 24000,
				"payment_method": "cash"
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	receipt, err := c.CompleteOrder(context.Background(), "u1", "cash")
	require.NoError(t, err)
	assert.Equal(t, "ORD-u1-1700000000", receipt.OrderID)
	assert.Equal(t, 24000.0, receipt.TotalPrice)
}

func TestCompleteOrderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "No active order to complete"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.CompleteOrder(context.Background(), "u1", "cash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No active order")
}

func TestObserverTimesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	type observation struct {
		op string
		d  time.Duration
	}
	var seen []observation
	c.SetObserver(func(op string, d time.Duration) {
		seen = append(seen, observation{op, d})
	})

	c.Chat(context.Background(), ChatRequest{Message: "hi"})
	c.Menu(context.Background())
	c.Health(context.Background())

	require.Len(t, seen, 3)
	assert.Equal(t, "chat", seen[0].op)
	assert.Equal(t, "menu", seen[1].op)
	assert.Equal(t, "health", seen[2].op)
	for _, o := range seen {
		assert.GreaterOrEqual(t, o.d, time.Duration(0))
	}
}

func TestObserverFiresOnNetworkFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	var ops []string
	c.SetObserver(func(op string, _ time.Duration) { ops = append(ops, op) })

	_, err := c.Chat(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, []string{"chat"}, ops)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	assert.True(t, c.Health(context.Background()))

	srv.Close()
	assert.False(t, c.Health(context.Background()))
}
