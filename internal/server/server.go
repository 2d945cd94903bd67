package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/broker"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/cache"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/config"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/handler"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/license"
	appmw "github.com/LeeJarvis98/moneyx-partner-backend/internal/middleware"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/repository"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(cfg *config.Config, db *gorm.DB, cc *cache.ChainCache, licenses license.Store, log *logrus.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(appmw.Metrics)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewReferralCodeRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	detailRepo := repository.NewPartnerDetailRepository(db)
	snapshotRepo := repository.NewCommissionSnapshotRepository(db)

	chainSvc := service.NewChainService(userRepo, codeRepo, cc, log)
	rankSvc := service.NewRankService(userRepo, chainSvc, log)
	commissionSvc := service.NewCommissionService(userRepo, detailRepo, snapshotRepo, chainSvc, service.CommissionPolicy{
		PoolPercent:         cfg.CommissionPoolPercent,
		FeePercent:          cfg.TradiFeePercent,
		UplinerSharePercent: cfg.UplinerSharePercent,
	}, log)
	partnerSvc := service.NewPartnerService(userRepo, codeRepo, partnerRepo, detailRepo, rankSvc, licenses, log)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, log)

	chainHandler := handler.NewChainHandler(chainSvc)
	commissionHandler := handler.NewCommissionHandler(commissionSvc)
	partnerHandler := handler.NewPartnerHandler(partnerSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	brokerHandler := handler.NewBrokerHandler(broker.New(cfg.BrokerBaseURL, cfg.BrokerToken, nil))

	authMw := appmw.NewAuthMiddleware(cfg.JWTSecret)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.PUT("/auth/password", authHandler.UpdatePassword, authMw.RequireAuth)

	e.GET("/referral-chain", chainHandler.Get)
	e.GET("/referral-downline", chainHandler.GetDownline)
	e.GET("/chain-commission-snapshot", commissionHandler.ListSnapshots)
	e.GET("/chain-commission", commissionHandler.GetLive)

	e.POST("/partners", partnerHandler.Register, authMw.RequireAuth)
	e.PATCH("/partners/type", partnerHandler.UpdateType, authMw.RequireAuth)
	e.GET("/partners/:id/details", partnerHandler.Details, authMw.RequireAuth)

	admin := e.Group("/admin", authMw.RequireAdmin)
	admin.POST("/commission-snapshots/rebuild", commissionHandler.Rebuild)
	admin.POST("/partner-rewards", partnerHandler.AccrueReward)

	e.GET("/broker/*", brokerHandler.Proxy, authMw.RequireAuth)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Echo() *echo.Echo {
	return s.e
}
