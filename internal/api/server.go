package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/storefront/docs"
	v1 "github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/config"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/metrics"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/notify"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/service"
)

const basePath = "/api/v1"

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Hub     *notify.Hub
	Metrics *metrics.Metrics

	registry *prometheus.Registry
}

type handlers struct {
	auth     *v1.AuthHandler
	orders   *v1.OrderHandler
	operator *v1.OperatorOrderHandler
	requests *v1.RequestHandler
	admin    *v1.AdminHandler
	stream   *v1.StreamHandler
}

// NewServer wires the engine onto db. The caller runs s.Hub before serving.
func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		Config:   conf,
		Router:   engine,
		Hub:      notify.NewHub(),
		Metrics:  metrics.New(registry),
		registry: registry,
	}

	s.MountMiddlewares()
	s.MountHandlers(s.initHandlers(db))

	return s
}

func (s *Server) initHandlers(db *gorm.DB) handlers {
	repos := repository.NewStore(db)
	store := service.NewGormStore(repos)

	fulfillment := service.NewFulfillmentService(store, s.Config.Engine, s.Metrics, s.Hub)
	admin := service.NewAdminService(store, s.Config.Engine, s.Metrics)
	auth := service.NewAuthService(repos.Operators())

	return handlers{
		auth:     v1.NewAuthHandler(s.Config.API, auth),
		orders:   v1.NewOrderHandler(fulfillment),
		operator: v1.NewOperatorOrderHandler(fulfillment),
		requests: v1.NewRequestHandler(fulfillment),
		admin:    v1.NewAdminHandler(admin),
		stream:   v1.NewStreamHandler(fulfillment, s.Hub, s.Config.API.AllowedCORSDomains),
	}
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.HTTPMetrics(s.Metrics))
}

func (s *Server) MountHandlers(h handlers) {
	limiter := middleware.NewRateLimiter(s.Config.RateLimit)

	public := s.Router.Group(basePath)
	{
		public.GET("/orders/active", h.orders.HandleGetActiveOrder)
		public.GET("/orders/:orderID", h.orders.HandleGetOrder)
		public.GET("/orders/:orderID/stream", h.stream.HandleStream)
		public.GET("/tokens/balance", h.orders.HandleGetBalance)
	}

	limited := s.Router.Group(basePath, limiter.Limit())
	{
		limited.POST("/orders", h.orders.HandlePlaceOrder)
		limited.POST("/orders/:orderID/cancel", h.orders.HandleCancelOrder)
		limited.POST("/recharges", h.requests.HandleSubmitRecharge)
		limited.POST("/refunds", h.requests.HandleSubmitRefund)
		limited.POST("/admin/login", h.auth.HandleLogin)
	}

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.POST("/recharges/:requestID/review", h.requests.HandleReviewRecharge)
		admin.POST("/refunds/:requestID/review", h.requests.HandleReviewRefund)

		admin.GET("/orders/:orderID", h.operator.HandleGetOrder)
		admin.POST("/orders/:orderID/claim", h.operator.HandleClaimOrder)
		admin.POST("/orders/:orderID/complete", h.operator.HandleCompleteOrder)
		admin.POST("/orders/:orderID/reject", h.operator.HandleRejectOrder)
		admin.POST("/orders/:orderID/cancel", h.operator.HandleCancelOrder)

		admin.POST("/tokens", h.admin.HandleCreateToken)
		admin.POST("/tokens/:tokenID/block", h.admin.HandleBlockToken)
		admin.GET("/tokens/:tokenID/mutations", h.admin.HandleListMutations)
		admin.POST("/options", h.admin.HandleCreateOption)
		admin.POST("/options/:optionID/stock", h.admin.HandleAddStock)
		admin.POST("/coupons", h.admin.HandleCreateCoupon)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Storefront API"
	docs.SwaggerInfo.Description = "Token storefront order fulfilment."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
