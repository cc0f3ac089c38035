package server

import (
	"context"
	"net/http"
	"time"

	"github.com/faturahq/fatura/internal/authorization"
	"github.com/faturahq/fatura/internal/config"
	"github.com/faturahq/fatura/internal/metrics"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	if m != nil {
		r.Use(metrics.GinMiddleware(m))
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

	Cfg     *config.Config
	Metrics *metrics.Metrics `optional:"true"`
}

func registerGin(p engineParams) *gin.Engine {
	return NewEngine(p.Cfg, p.Metrics)
}

func run(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
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
	engine *gin.Engine
	cfg    *config.Config
	log    *zap.Logger

	planSvc  plandomain.Service
	orderSvc orderdomain.Service
	authzSvc authorization.Service
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg *config.Config
	Log *zap.Logger

	PlanSvc  plandomain.Service
	OrderSvc orderdomain.Service
	AuthzSvc authorization.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		log:    p.Log.Named("http.server"),

		planSvc:  p.PlanSvc,
		orderSvc: p.OrderSvc,
		authzSvc: p.AuthzSvc,
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

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.POST("/plans", s.AuthRequired(), s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanCreate), s.CreatePlan)
	api.PATCH("/plans/:id", s.AuthRequired(), s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanUpdate), s.UpdatePlan)
	api.POST("/plans/upgrade", s.AuthRequired(), s.authorizeAction(authorization.ObjectPlan, authorization.ActionPlanUpgrade), s.UpgradePlan)

	// -------- Orders --------
	api.POST("/orders", s.AuthRequired(), s.authorizeAction(authorization.ObjectOrder, authorization.ActionOrderCreate), s.CreateOrder)
	api.GET("/orders/:id", s.AuthRequired(), s.authorizeAction(authorization.ObjectOrder, authorization.ActionOrderView), s.GetOrderByID)
	api.PATCH("/orders/:id/status", s.AuthRequired(), s.authorizeAction(authorization.ObjectOrder, authorization.ActionOrderUpdateStatus), s.UpdateOrderStatus)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
