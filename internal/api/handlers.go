package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"siipcoffee/internal/backend"
	"siipcoffee/internal/cart"
	"siipcoffee/internal/checkout"
	"siipcoffee/internal/models"
)

// GetHealth reports the gateway's own liveness plus the backend's.
func (s *Server) GetHealth(c *gin.Context) {
	backendUp := false
	if s.backend != nil {
		backendUp = s.backend.Health(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": backendUp,
	})
}

// GetMenu proxies the backend menu, falling back to the built-in catalog
// when the backend is unreachable.
func (s *Server) GetMenu(c *gin.Context) {
	if s.backend != nil {
		catalog, err := s.backend.Menu(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusOK, catalog)
			return
		}
		var netErr *backend.NetworkError
		if !errors.As(err, &netErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, s.catalog)
}

// GetMenuCategory returns one category of the menu.
func (s *Server) GetMenuCategory(c *gin.Context) {
	category := c.Param("category")

	if s.backend != nil {
		items, err := s.backend.MenuCategory(c.Request.Context(), category)
		if err == nil {
			c.JSON(http.StatusOK, items)
			return
		}
		var netErr *backend.NetworkError
		if !errors.As(err, &netErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
	}

	items, ok := s.catalog[category]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown category: " + category})
		return
	}
	c.JSON(http.StatusOK, items)
}

type chatRequest struct {
	Message   string `json:"message" binding:"required"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// PostChat runs one chat turn through the session owning the cart.
func (s *Server) PostChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = req.UserID
	}
	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id or user_id required"})
		return
	}

	sess := s.sessions.GetOrCreate(req.SessionID, req.UserID)
	reply, err := sess.Send(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if reply == nil {
		c.JSON(http.StatusOK, gin.H{"message": nil})
		return
	}

	s.monitor.IncrementMetric("chat_turns")
	s.monitor.RecordSessionSnapshot(req.SessionID, map[string]interface{}{
		"messages":   len(sess.Messages()),
		"cart_items": sess.Cart().TotalItems(),
		"cart_total": sess.Cart().TotalPrice(),
	})
	if s.metrics != nil {
		s.metrics.RecordChatTurn(reply.Intent)
	}
	c.JSON(http.StatusOK, gin.H{
		"message": reply,
		"cart": gin.H{
			"items":       sess.Cart().Lines(),
			"total_price": sess.Cart().TotalPrice(),
		},
	})
}

// GetMessages returns a session's chat log in append order.
func (s *Server) GetMessages(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": sess.Messages()})
}

func (s *Server) cartView(store *cart.Store) gin.H {
	return gin.H{
		"items":       store.Lines(),
		"total_items": store.TotalItems(),
		"total_price": store.TotalPrice(),
		"customer":    store.Customer(),
	}
}

// GetCart returns the live cart for a session.
func (s *Server) GetCart(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, s.cartView(sess.Cart()))
}

type addItemRequest struct {
	ID       string `json:"id" binding:"required"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// AddCartItem merges a menu item into the session's cart.
func (s *Server) AddCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, ok := s.catalog.FindByID(req.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown menu item: " + req.ID})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	sess := s.sessions.GetOrCreate(c.Param("sessionId"), "")
	sess.Cart().AddLine(models.CartLine{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: req.Quantity,
		Notes:    req.Notes,
	})
	c.JSON(http.StatusOK, s.cartView(sess.Cart()))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets an absolute quantity; zero removes the line.
func (s *Server) UpdateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := s.sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	sess.Cart().UpdateQuantity(c.Param("itemId"), req.Quantity)
	c.JSON(http.StatusOK, s.cartView(sess.Cart()))
}

// RemoveCartItem deletes a line from the cart.
func (s *Server) RemoveCartItem(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	sess.Cart().RemoveItem(c.Param("itemId"))
	c.JSON(http.StatusOK, s.cartView(sess.Cart()))
}

// ClearCart empties the cart and resets the customer info.
func (s *Server) ClearCart(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	sess.Cart().Clear()
	c.JSON(http.StatusOK, s.cartView(sess.Cart()))
}

// SetCustomer replaces the session's customer info.
func (s *Server) SetCustomer(c *gin.Context) {
	var info models.CustomerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if info.OrderType != "" && !info.OrderType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order type: " + string(info.OrderType)})
		return
	}
	if info.PaymentMethod != "" && !info.PaymentMethod.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment method: " + string(info.PaymentMethod)})
		return
	}

	sess := s.sessions.GetOrCreate(c.Param("sessionId"), "")
	current := sess.Cart().Customer()
	if info.OrderType == "" {
		info.OrderType = current.OrderType
	}
	if info.PaymentMethod == "" {
		info.PaymentMethod = current.PaymentMethod
	}
	sess.Cart().SetCustomer(info)
	c.JSON(http.StatusOK, s.cartView(sess.Cart()))
}

// PostCheckout assembles and submits the session's order.
func (s *Server) PostCheckout(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("sessionId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	receipt, err := s.assembler.Checkout(c.Request.Context(), sess)
	if err != nil {
		s.recordCheckout("failure")
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
			return
		}
		var netErr *backend.NetworkError
		if errors.As(err, &netErr) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ordering backend unreachable"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	s.recordCheckout("success")
	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

func (s *Server) recordCheckout(outcome string) {
	s.monitor.IncrementMetric("checkouts_" + outcome)
	if s.metrics != nil {
		s.metrics.RecordCheckout(outcome)
	}
}

// GetActiveOrder proxies the backend's view of a user's current order.
func (s *Server) GetActiveOrder(c *gin.Context) {
	if s.backend == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ordering backend not configured"})
		return
	}
	status, err := s.backend.Order(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type completeRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

// CompleteOrder asks the backend to settle a user's active order.
func (s *Server) CompleteOrder(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentMethodCash
	}
	if !req.PaymentMethod.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment method: " + string(req.PaymentMethod)})
		return
	}
	if s.backend == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ordering backend not configured"})
		return
	}

	receipt, err := s.backend.CompleteOrder(c.Request.Context(), c.Param("userId"), req.PaymentMethod)
	if err != nil {
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

// GetStoredOrder reads one persisted receipt.
func (s *Server) GetStoredOrder(c *gin.Context) {
	if s.orders == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order store not configured"})
		return
	}
	receipt, err := s.orders.GetOrder(c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// ListStoredOrders reads a user's persisted receipts.
func (s *Server) ListStoredOrders(c *gin.Context) {
	if s.orders == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order store not configured"})
		return
	}
	receipts, err := s.orders.ListOrders(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": receipts})
}

// GetRuntimeMetrics dumps the in-process metric map.
func (s *Server) GetRuntimeMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}

func writeBackendError(c *gin.Context, err error) {
	var netErr *backend.NetworkError
	if errors.As(err, &netErr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ordering backend unreachable"})
		return
	}
	var beErr *backend.BackendError
	if errors.As(err, &beErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": beErr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
