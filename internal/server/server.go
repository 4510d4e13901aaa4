package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	compliancedomain "github.com/smallbiznis/gsttally/internal/compliance/domain"
	"github.com/smallbiznis/gsttally/internal/config"
	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	"github.com/smallbiznis/gsttally/internal/observability"
	obslogger "github.com/smallbiznis/gsttally/internal/observability/logger"
	obstracing "github.com/smallbiznis/gsttally/internal/observability/tracing"
	"github.com/smallbiznis/gsttally/internal/ratelimit"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"github.com/smallbiznis/gsttally/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, promMetrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(nil))
	if promMetrics != nil {
		r.Use(promMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type engineParams struct {
	fx.In

	ObsCfg  observability.Config
	Metrics *telemetry.Metrics `optional:"true"`
}

func registerGin(p engineParams) *gin.Engine {
	return NewEngine(p.ObsCfg, p.Metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	gstSvc      gstdomain.Service
	compliance  compliancedomain.Provider
	taxSvc      taxdomain.Service
	limiter     *ratelimit.ValidationLimiter
	promMetrics *telemetry.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	GSTSvc     gstdomain.Service
	Compliance compliancedomain.Provider
	TaxSvc     taxdomain.Service
	Limiter    *ratelimit.ValidationLimiter `optional:"true"`
	Metrics    *telemetry.Metrics           `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         log.Named("http.server"),
		gstSvc:      p.GSTSvc,
		compliance:  p.Compliance,
		taxSvc:      p.TaxSvc,
		limiter:     p.Limiter,
		promMetrics: p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Sales Invoices --------
	api.POST("/sales-invoices/validate", s.ValidateSalesInvoice)
	api.POST("/sales-invoices/before-submit", s.BeforeSubmitSalesInvoice)

	// -------- Item Tax Templates --------
	api.GET("/item-tax-templates", s.ListItemTaxTemplates)
	api.POST("/item-tax-templates", s.CreateItemTaxTemplate)
	api.PATCH("/item-tax-templates/:id", s.UpdateItemTaxTemplate)
	api.POST("/item-tax-templates/:id/disable", s.DisableItemTaxTemplate)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
