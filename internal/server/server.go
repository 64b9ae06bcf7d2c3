package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jkestates/estatedesk/docs"
	analyticsdomain "github.com/jkestates/estatedesk/internal/analytics/domain"
	"github.com/jkestates/estatedesk/internal/config"
	invoicedomain "github.com/jkestates/estatedesk/internal/invoice/domain"
	paymentdomain "github.com/jkestates/estatedesk/internal/payment/domain"
	propertydomain "github.com/jkestates/estatedesk/internal/property/domain"
	"github.com/jkestates/estatedesk/internal/utilitybill/session"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config         config.Config
	Log            *zap.Logger
	DB             *gorm.DB
	Gatherer       prometheus.Gatherer
	TracerProvider trace.TracerProvider
	Sessions       *session.Registry
	PropertySvc    propertydomain.Service
	PaymentSvc     paymentdomain.Service
	InvoiceSvc     invoicedomain.Service
	AnalyticsSvc   analyticsdomain.Service
}

type Server struct {
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB
	engine *gin.Engine
	auth   *staffTokens

	sessions     *session.Registry
	propertySvc  propertydomain.Service
	paymentSvc   paymentdomain.Service
	invoiceSvc   invoicedomain.Service
	analyticsSvc analyticsdomain.Service
}

func NewServer(p Params) *Server {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:          p.Config,
		log:          p.Log.Named("http"),
		db:           p.DB,
		auth:         newStaffTokens(p.Config.Auth.StaffTokens),
		sessions:     p.Sessions,
		propertySvc:  p.PropertySvc,
		paymentSvc:   p.PaymentSvc,
		invoiceSvc:   p.InvoiceSvc,
		analyticsSvc: p.AnalyticsSvc,
	}
	if s.auth.empty() {
		s.log.Warn("no staff tokens configured, api requests are not authenticated")
	}

	engine := gin.New()
	engine.Use(
		RequestID(),
		Tracing(p.Config.Telemetry.ServiceName, p.TracerProvider),
		RequestLogger(s.log),
		Recovery(s.log),
	)
	s.engine = engine
	s.registerRoutes(p.Gatherer)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.engine.GET("/healthz", s.Health)
	s.engine.GET("/metrics", metricsHandler(gatherer))
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api/v1", s.StaffAuthRequired())

	api.GET("/properties", s.ListProperties)
	api.GET("/properties/:id", s.GetProperty)
	api.GET("/properties/:id/units", s.ListUnits)

	billing := api.Group("/billing/sessions")
	billing.POST("", s.CreateBillingSession)
	billing.GET("/:id", s.GetBillingSession)
	billing.DELETE("/:id", s.DeleteBillingSession)
	billing.POST("/:id/select", s.SelectBillingPeriod)
	billing.POST("/:id/reload", s.ReloadBillingSession)
	billing.POST("/:id/create-mode", s.SwitchToCreateMode)
	billing.PUT("/:id/rate", s.SetBillingRate)
	billing.PUT("/:id/lines/:unit_id/current-reading", s.SetCurrentReading)
	billing.PUT("/:id/lines/:unit_id/previous-reading", s.SetPreviousReading)
	billing.PUT("/:id/lines/:unit_id/arrears", s.SetArrears)
	billing.POST("/:id/validate", s.ValidateBillingSession)
	billing.POST("/:id/save", s.SaveBillingSession)
	billing.GET("/:id/statement", s.BatchStatement)
	billing.GET("/:id/lines/:unit_id/statement", s.SingleStatement)

	api.GET("/payments/:id/receipt", s.PaymentReceipt)
	api.GET("/invoices/:id/document", s.InvoiceDocument)
	api.GET("/tenants/:id/statement", s.TenantStatement)
	api.GET("/reports/:type", s.AnalyticsReport)
}

// Module serves the API on cfg.HTTPAddr for the lifetime of the fx app.
var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(startHTTP),
)

func startHTTP(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
