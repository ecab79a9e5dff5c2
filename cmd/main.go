package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"siipcoffee/internal/api"
	"siipcoffee/internal/backend"
	"siipcoffee/internal/chat"
	"siipcoffee/internal/checkout"
	"siipcoffee/internal/config"
	"siipcoffee/internal/database"
	"siipcoffee/internal/intent"
	"siipcoffee/internal/models"
	"siipcoffee/internal/monitoring"
	"siipcoffee/internal/session"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	// Initialize database
	if err := database.InitDB(cfg.Database.Dialect, cfg.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()
	orders := database.NewOrderStore(database.GetDB())

	// Initialize backend client and intent provider
	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	provider, err := buildProvider(cfg, client)
	if err != nil {
		log.Fatalf("Failed to initialize intent provider: %v", err)
	}

	// Initialize metrics
	monitor := monitoring.NewMonitor()
	metrics := monitoring.NewMetricsCollector()
	client.SetObserver(metrics.ObserveRequest)

	// Watch backend health
	poller := backend.NewHealthPoller(client, cfg.Backend.HealthInterval, func(up bool) {
		metrics.SetBackendUp(up)
		if up {
			log.Printf("Backend %s is reachable", client.BaseURL())
		} else {
			log.Printf("Backend %s is unreachable", client.BaseURL())
		}
	})
	go poller.Run(ctx)

	// Initialize session registry with idle eviction
	sessions := session.NewRegistry(provider)
	sessions.OnCountChange(metrics.SetActiveSessions)
	if cfg.Backend.WSToken != "" {
		wsURL := websocketURL(cfg.Backend.URL)
		sessions.OnCreate(func(sess *chat.Session) func() {
			dctx, dcancel := context.WithCancel(ctx)
			duplex := chat.NewDuplex(wsURL, cfg.Backend.WSToken, sess)
			sess.SetPush(duplex.Send)
			go duplex.Run(dctx)
			return dcancel
		})
	}
	go sessions.Run(ctx, time.Minute)

	// Initialize API server
	server := api.NewServer(api.Options{
		Sessions:  sessions,
		Backend:   client,
		Assembler: checkout.NewAssembler(client, orders),
		Orders:    orders,
		Monitor:   monitor,
		Metrics:   metrics,
		Catalog:   models.DefaultCatalog(),
		JWTSecret: cfg.Auth.JWTSecret,
	})

	// Start metrics server
	go startMetricsServer(cfg.Server.MetricsPort, metrics)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")
		cancel()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatalf("API server error: %v", err)
	}
}

// websocketURL maps the backend's HTTP base URL to its push endpoint.
func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws"
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
	}
	return base + "/ws"
}

func buildProvider(cfg *config.Config, client *backend.Client) (intent.Provider, error) {
	switch cfg.Intent.Provider {
	case "backend":
		return client, nil
	case "keyword":
		return intent.NewKeywordClassifier(models.DefaultCatalog()), nil
	case "llm":
		return intent.NewLLMProvider(cfg.Intent.OpenAIKey, cfg.Intent.OpenAIModel, models.DefaultCatalog())
	default:
		return nil, fmt.Errorf("unknown intent provider %q", cfg.Intent.Provider)
	}
}

func startMetricsServer(port int, metrics *monitoring.MetricsCollector) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(metrics.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
