package router

import (
	"time"

	"github.com/erp/puntoventa/internal/infrastructure/logger"
	"github.com/erp/puntoventa/internal/infrastructure/telemetry"
	"github.com/erp/puntoventa/internal/interfaces/http/handler"
	"github.com/erp/puntoventa/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers the API mounts
type Handlers struct {
	Orders    *handler.OrderHandler
	Payments  *handler.PaymentHandler
	Sequences *handler.SequenceHandler
	Products  *handler.ProductHandler
	Taxes     *handler.TaxHandler
	Customers *handler.CustomerHandler
	System    *handler.SystemHandler
}

// EngineConfig configures the middleware stack of the API engine
type EngineConfig struct {
	Logger          *zap.Logger
	ServiceName     string
	TrustedProxies  []string
	CORS            middleware.CORSConfig
	Security        middleware.SecurityConfig
	MaxBodySize     int64
	RequestTimeout  time.Duration
	DefaultTenantID string
	TracingEnabled  bool
	MeterProvider   *telemetry.MeterProvider
	// RateLimiter is optional; the caller runs its cleanup loop
	RateLimiter *middleware.RateLimiter
	Swagger     middleware.SwaggerConfig
}

// NewEngine builds the gin engine with the full middleware stack and every
// route. Probes and docs sit outside the tenant-scoped API group.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.TracingEnabled
	if cfg.ServiceName != "" {
		tracing.ServiceName = cfg.ServiceName
	}

	// Order matters: the request ID and the span exist before the access
	// log, and the tenant is resolved before span attributes and limits.
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.Secure(cfg.Security))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: cfg.MeterProvider,
		Enabled:       cfg.MeterProvider != nil,
		Logger:        log,
	}))

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Ready)
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	tenant := middleware.DefaultTenantConfig()
	tenant.DefaultTenantID = cfg.DefaultTenantID
	tenant.Logger = log

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.Timeout(cfg.RequestTimeout),
		middleware.TenantMiddleware(tenant),
		middleware.TracingAttributeInjector(),
	)
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	RegisterRoutes(r, h)
	r.Setup()

	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	return engine
}

// RegisterRoutes adds the domain groups of the point of sale API to r
func RegisterRoutes(r *Router, h Handlers) {
	if h.Orders != nil {
		orders := NewDomainGroup("pos", "/orders")
		orders.POST("", h.Orders.Create)
		orders.GET("", h.Orders.List)
		orders.POST("/bulk-delete", h.Orders.BulkDelete)
		orders.GET("/:id", h.Orders.GetByID)
		orders.PUT("/:id", h.Orders.Update)
		orders.DELETE("/:id", h.Orders.Delete)
		orders.POST("/:id/lines", h.Orders.AddLine)
		orders.PUT("/:id/lines/:line_id", h.Orders.UpdateLine)
		orders.DELETE("/:id/lines/:line_id", h.Orders.RemoveLine)
		orders.PUT("/:id/lines/:line_id/taxes", h.Orders.SetLineTaxes)
		orders.DELETE("/:id/lines/:line_id/taxes", h.Orders.ResetLineTaxes)
		orders.POST("/:id/recompute", h.Orders.Recompute)
		orders.GET("/:id/payment-action", h.Orders.PaymentFormAction)
		if h.Payments != nil {
			orders.GET("/:id/payments", h.Payments.ListByOrder)
		}
		r.Register(orders)
	}

	if h.Payments != nil {
		payments := NewDomainGroup("finance", "/payments")
		payments.POST("", h.Payments.Create)
		payments.GET("", h.Payments.List)
		payments.GET("/:id", h.Payments.GetByID)
		payments.PUT("/:id", h.Payments.Update)
		payments.DELETE("/:id", h.Payments.Delete)
		payments.POST("/:id/post", h.Payments.Post)
		payments.POST("/:id/cancel", h.Payments.Cancel)
		r.Register(payments)
	}

	if h.Sequences != nil {
		sequences := NewDomainGroup("sequence", "/sequences")
		sequences.GET("", h.Sequences.List)
		sequences.GET("/:code", h.Sequences.Get)
		sequences.POST("/:code/reset", h.Sequences.Reset)
		r.Register(sequences)
	}

	catalog := NewDomainGroup("catalog", "/catalog")
	if h.Products != nil {
		products := catalog.Group("products", "/products")
		products.POST("", h.Products.Create)
		products.GET("", h.Products.List)
		products.GET("/code/:code", h.Products.GetByCode)
		products.GET("/:id", h.Products.GetByID)
		products.PUT("/:id", h.Products.Update)
		products.DELETE("/:id", h.Products.Delete)
		products.POST("/:id/activate", h.Products.Activate)
		products.POST("/:id/deactivate", h.Products.Deactivate)
	}
	if h.Taxes != nil {
		taxes := catalog.Group("taxes", "/taxes")
		taxes.POST("", h.Taxes.Create)
		taxes.GET("", h.Taxes.List)
		taxes.GET("/:id", h.Taxes.GetByID)
		taxes.PUT("/:id", h.Taxes.Update)
		taxes.DELETE("/:id", h.Taxes.Delete)
	}
	r.Register(catalog)

	if h.Customers != nil {
		partner := NewDomainGroup("partner", "/partner")
		customers := partner.Group("customers", "/customers")
		customers.POST("", h.Customers.Create)
		customers.GET("", h.Customers.List)
		customers.GET("/:id", h.Customers.GetByID)
		customers.PUT("/:id", h.Customers.Update)
		customers.DELETE("/:id", h.Customers.Delete)
		r.Register(partner)
	}

	if h.System != nil {
		system := NewDomainGroup("system", "/system")
		system.GET("/info", h.System.GetSystemInfo)
		system.GET("/ping", h.System.Ping)
		r.Register(system)
	}
}
