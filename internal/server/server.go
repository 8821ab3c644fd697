package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/config"
	"github.com/resaleops/stockroom/internal/consigner"
	consignerdomain "github.com/resaleops/stockroom/internal/consigner/domain"
	"github.com/resaleops/stockroom/internal/item"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	"github.com/resaleops/stockroom/internal/location"
	locationdomain "github.com/resaleops/stockroom/internal/location/domain"
	"github.com/resaleops/stockroom/internal/observability"
	obsmiddleware "github.com/resaleops/stockroom/internal/observability/logger"
	obsmetrics "github.com/resaleops/stockroom/internal/observability/metrics"
	obstracing "github.com/resaleops/stockroom/internal/observability/tracing"
	"github.com/resaleops/stockroom/internal/payout"
	payoutdomain "github.com/resaleops/stockroom/internal/payout/domain"
	"github.com/resaleops/stockroom/internal/sku"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	sku.Module,
	location.Module,
	consigner.Module,
	item.Module,
	payout.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine       *gin.Engine
	cfg          config.Config
	catalog      *catalog.Holder
	itemSvc      itemdomain.Service
	locationSvc  locationdomain.Service
	consignerSvc consignerdomain.Service
	payoutSvc    payoutdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Catalog      *catalog.Holder
	ItemSvc      itemdomain.Service
	LocationSvc  locationdomain.Service
	ConsignerSvc consignerdomain.Service
	PayoutSvc    payoutdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		catalog:      p.Catalog,
		itemSvc:      p.ItemSvc,
		locationSvc:  p.LocationSvc,
		consignerSvc: p.ConsignerSvc,
		payoutSvc:    p.PayoutSvc,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Items --------
	v1.GET("/items", s.SearchItems)
	v1.POST("/items", s.CreateItem)
	v1.GET("/items/export", s.ExportItems)
	v1.GET("/items/:sku", s.GetItem)
	v1.PATCH("/items/:sku", s.UpdateItem)
	v1.POST("/items/:sku/status", s.TransitionItemStatus)
	v1.POST("/items/:sku/reopen", s.ReopenItem)
	v1.POST("/items/:sku/move", s.MoveItem)
	v1.POST("/items/:sku/round-price", s.RoundItemPrice)
	v1.POST("/items/:sku/variants", s.CreateItemVariant)

	// -------- Locations --------
	v1.GET("/locations", s.ListLocations)
	v1.POST("/locations", s.CreateLocation)
	v1.GET("/locations/stats", s.LocationStats)
	v1.GET("/locations/suggest-code", s.SuggestLocationCode)
	v1.GET("/locations/:code", s.GetLocation)
	v1.PATCH("/locations/:code", s.UpdateLocation)
	v1.POST("/locations/:code/deactivate", s.DeactivateLocation)

	// -------- Consigners --------
	v1.GET("/consigners", s.ListConsigners)
	v1.POST("/consigners", s.FindOrCreateConsigner)
	v1.GET("/consigners/:id", s.GetConsignerByID)
	v1.PATCH("/consigners/:id", s.UpdateConsigner)
	v1.GET("/consigners/:id/statistics", s.GetConsignerStatistics)
	v1.GET("/consigners/:id/payout", s.GetPendingPayout)
	v1.POST("/consigners/:id/payout/mark-paid", s.MarkPayoutPaid)
	v1.GET("/consigners/:id/payout/receipts", s.ListPayoutReceipts)

	// -------- Sales --------
	v1.POST("/sales", s.RecordSale)
	v1.POST("/sales/quote", s.QuoteSale)
	v1.GET("/platforms", s.ListPlatforms)
}
