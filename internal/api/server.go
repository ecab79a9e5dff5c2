package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"siipcoffee/internal/backend"
	"siipcoffee/internal/checkout"
	"siipcoffee/internal/models"
	"siipcoffee/internal/monitoring"
	"siipcoffee/internal/session"
)

// OrderReader loads stored receipts for the order history endpoints.
type OrderReader interface {
	GetOrder(orderID string) (*models.Receipt, error)
	ListOrders(userID string) ([]*models.Receipt, error)
}

// Server is the HTTP surface of the ordering gateway. It owns the session
// registry and fronts the conversational backend for menu and order calls.
type Server struct {
	Router *gin.Engine

	sessions  *session.Registry
	backend   *backend.Client
	assembler *checkout.Assembler
	orders    OrderReader
	monitor   *monitoring.Monitor
	metrics   *monitoring.MetricsCollector
	catalog   models.Catalog
	jwtSecret string
}

// Options carries the dependencies a Server needs.
type Options struct {
	Sessions  *session.Registry
	Backend   *backend.Client
	Assembler *checkout.Assembler
	Orders    OrderReader
	Monitor   *monitoring.Monitor
	Metrics   *monitoring.MetricsCollector
	Catalog   models.Catalog
	JWTSecret string
}

// NewServer creates the gateway API and wires its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		Router:    gin.Default(),
		sessions:  opts.Sessions,
		backend:   opts.Backend,
		assembler: opts.Assembler,
		orders:    opts.Orders,
		monitor:   opts.Monitor,
		metrics:   opts.Metrics,
		catalog:   opts.Catalog,
		jwtSecret: opts.JWTSecret,
	}
	if s.catalog == nil {
		s.catalog = models.DefaultCatalog()
	}
	if s.monitor == nil {
		s.monitor = monitoring.NewMonitor()
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/api/health", s.GetHealth)

	api := s.Router.Group("/api")
	{
		api.GET("/menu", s.GetMenu)
		api.GET("/menu/:category", s.GetMenuCategory)

		api.POST("/chat", s.PostChat)
		api.GET("/chat/:sessionId/messages", s.GetMessages)

		api.GET("/cart/:sessionId", s.GetCart)
		api.POST("/cart/:sessionId/items", s.AddCartItem)
		api.PUT("/cart/:sessionId/items/:itemId", s.UpdateCartItem)
		api.DELETE("/cart/:sessionId/items/:itemId", s.RemoveCartItem)
		api.DELETE("/cart/:sessionId", s.ClearCart)
		api.PUT("/cart/:sessionId/customer", s.SetCustomer)

		api.POST("/checkout/:sessionId", s.PostCheckout)
		api.GET("/order/:userId", s.GetActiveOrder)
		api.POST("/order/:userId/complete", s.CompleteOrder)
		api.GET("/orders/:orderId", s.GetStoredOrder)
		api.GET("/orders/user/:userId", s.ListStoredOrders)

		api.GET("/metrics/runtime", s.GetRuntimeMetrics)
	}

	ws := s.Router.Group("/ws")
	ws.Use(AuthMiddleware(s.jwtSecret))
	ws.GET("", s.handleWebSocket)
}

// Run starts the HTTP server on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
