package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aquameter/aquameter/internal/config"
	flatdomain "github.com/aquameter/aquameter/internal/flat/domain"
	identitydomain "github.com/aquameter/aquameter/internal/identity/domain"
	paymentdomain "github.com/aquameter/aquameter/internal/payment/domain"
	propertydomain "github.com/aquameter/aquameter/internal/property/domain"
	readingdomain "github.com/aquameter/aquameter/internal/reading/domain"
	tenancydomain "github.com/aquameter/aquameter/internal/tenancy/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(RunHTTP),
)

type Server struct {
	log *zap.Logger
	db  *gorm.DB
	cfg config.Config

	identitysvc identitydomain.Service
	propertysvc propertydomain.Service
	flatsvc     flatdomain.Service
	tenancysvc  tenancydomain.Service
	readingsvc  readingdomain.Service
	paymentsvc  paymentdomain.Service
}

type ServerParam struct {
	fx.In

	Log *zap.Logger
	DB  *gorm.DB
	Cfg config.Config

	IdentitySvc identitydomain.Service
	PropertySvc propertydomain.Service
	FlatSvc     flatdomain.Service
	TenancySvc  tenancydomain.Service
	ReadingSvc  readingdomain.Service
	PaymentSvc  paymentdomain.Service
}

func New(p ServerParam) *Server {
	return &Server{
		log:         p.Log.Named("server"),
		db:          p.DB,
		cfg:         p.Cfg,
		identitysvc: p.IdentitySvc,
		propertysvc: p.PropertySvc,
		flatsvc:     p.FlatSvc,
		tenancysvc:  p.TenancySvc,
		readingsvc:  p.ReadingSvc,
		paymentsvc:  p.PaymentSvc,
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.RequestLogger())
	r.Use(s.Metrics())

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", MetricsHandler())

	v1 := r.Group("/v1")
	v1.POST("/signup", s.Signup)

	auth := v1.Group("")
	auth.Use(s.AccountRequired())
	{
		auth.GET("/me", s.Me)
		auth.POST("/bind", s.BindFlat)
		auth.GET("/me/bills", s.ListMyBills)
		auth.GET("/me/bills/latest", s.LatestMyBill)

		auth.POST("/properties", s.CreateProperty)
		auth.GET("/properties", s.ListProperties)
		auth.GET("/properties/:id", s.GetProperty)
		auth.PATCH("/properties/:id/rates", s.UpdatePropertyRates)
		auth.POST("/properties/:id/flats", s.AddFlat)
		auth.GET("/properties/:id/flats", s.ListFlats)

		auth.DELETE("/flats/:id", s.DeleteFlat)
		auth.PATCH("/flats/:id/allowance", s.SetFreeAllowance)
		auth.POST("/flats/:id/unbind", s.UnbindFlat)
		auth.POST("/flats/:id/readings", s.RecordReading)
		auth.GET("/flats/:id/readings", s.ListReadings)

		auth.GET("/bills/:id", s.GetBill)
		auth.PATCH("/bills/:id/amount", s.CorrectBillAmount)
		auth.DELETE("/bills/:id", s.DeleteBill)
		auth.POST("/bills/:id/settle", s.SettleBill)
		auth.POST("/bills/:id/proof", s.SubmitProof)
		auth.POST("/bills/:id/verify", s.VerifyProof)
		auth.POST("/bills/:id/reject", s.RejectProof)
		auth.GET("/bills/:id/payments", s.ListBillPayments)
	}

	return r
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              ":" + s.cfg.App.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
