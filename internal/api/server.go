package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"clabs/internal/cache"
	"clabs/internal/config"
	"clabs/internal/database"
	"clabs/internal/external"
	"clabs/internal/handlers"
	"clabs/internal/messaging"
	"clabs/internal/metrics"
	"clabs/internal/middleware"
	"clabs/internal/repository"
	"clabs/internal/search"
	"clabs/internal/service"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	audit    *search.ElasticsearchClient
	metrics  *metrics.Metrics
	services *service.Services
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Подключаемся к NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s := &Server{
		config:  cfg,
		db:      db,
		nats:    natsClient,
		metrics: metrics.New(),
	}

	// Кэш идемпотентности заказов и поиск по журналу опциональны
	var orderCache service.OrderCache
	if cfg.Valkey.Enabled() {
		valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, order idempotency cache disabled", "addr", cfg.Valkey.Addr, "error", err)
		} else {
			s.valkey = valkeyClient
			orderCache = valkeyClient
		}
	}

	if cfg.Elasticsearch.Enabled() {
		esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, payment audit search disabled", "url", cfg.Elasticsearch.URL, "error", err)
		} else {
			s.audit = esClient
		}
	}

	gateway := external.NewRazorpayClient(cfg.Razorpay)
	if !cfg.Razorpay.Configured() {
		slog.Warn("Razorpay credentials are not set, order creation will be rejected")
	}

	repos := repository.NewRepositories(db)
	s.services = service.NewServices(repos, gateway, natsClient, orderCache, s.metrics, cfg)

	s.setupRoutes()

	return s, nil
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(s.metrics))

	var audit handlers.AuditSearcher
	if s.audit != nil {
		audit = s.audit
	}
	h := handlers.NewHandlers(s.services, audit)

	api := router.Group("/api")
	{
		api.POST("/orders", h.CreateOrder)
		api.POST("/registrations", h.CreateRegistration)

		payments := api.Group("/payments")
		{
			payments.POST("/verify", h.VerifyPayment)
			payments.POST("/webhook", h.PaymentWebhook)
		}

		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.POST("/:id/feedback", h.SubmitFeedback)
		}

		if s.config.Admin.Enabled() {
			admin := api.Group("/admin")
			admin.Use(middleware.AdminAuth(s.config.Admin.Username, s.config.Admin.Password))
			{
				admin.POST("/registrations/:id/cancel", h.CancelRegistration)
				admin.GET("/payments", h.SearchPayments)
			}
		} else {
			slog.Warn("Admin credentials are not set, admin routes are disabled")
		}
	}

	router.GET("/health", s.healthCheck)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router = router
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   health.Status,
		"service":  "clabs-api",
		"database": health,
	})
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup дожидается фоновых задач и закрывает соединения
func (s *Server) Cleanup() error {
	if s.services != nil {
		s.services.Wait()
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
