// Package main 是前台服务入口
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/hotel-frontdesk/internal/common/middleware"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	frontdeskHandler "github.com/dumeirei/hotel-frontdesk/internal/handler/frontdesk"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	frontdeskService "github.com/dumeirei/hotel-frontdesk/internal/service/frontdesk"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	m *metrics.Metrics,
	tracer *tracing.Tracer,
) {
	fd := cfg.Business.FrontDesk

	// 员工令牌
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:           cfg.JWT.Secret,
		AccessExpireTime: cfg.JWT.AccessTokenDuration(),
		Issuer:           cfg.JWT.Issuer,
	})

	// 初始化服务
	locker := cache.NewLocker(redisClient, fd.Allocation.LockTTLDuration(), fd.Allocation.LockWaitDuration())
	deps := frontdeskService.NewDependencies(db, locker, fd, m, tracer)
	taxRates := frontdeskService.NewTaxRateProvider(
		repository.NewSystemConfigRepository(db),
		redisClient,
		frontdeskService.TaxRatesFromConfig(fd.Tax),
		fd.Tax.CacheDuration(),
		m,
	)

	bookingSvc := frontdeskService.NewBookingService(deps)
	folioSvc := frontdeskService.NewFolioService(deps)
	checkoutSvc := frontdeskService.NewCheckoutService(deps)
	roomSvc := frontdeskService.NewRoomService(deps)

	// 初始化处理器
	operationLogRepo := repository.NewOperationLogRepository(db)
	bookingH := frontdeskHandler.NewBookingHandler(bookingSvc, taxRates)
	folioH := frontdeskHandler.NewFolioHandler(folioSvc, checkoutSvc, taxRates)
	roomH := frontdeskHandler.NewRoomHandler(roomSvc, taxRates)
	taxH := frontdeskHandler.NewTaxHandler(taxRates)
	auditH := frontdeskHandler.NewAuditHandler(operationLogRepo)
	opLogger := commonMiddleware.NewOperationLogger(operationLogRepo)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.RequestSizeLimiter(cfg.Server.MaxBodySize))
	if m != nil {
		r.Use(m.Middleware())
	}
	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   []string{"/health", "/ping", "/ready", cfg.Metrics.Path},
		}))
		r.Use(commonMiddleware.InjectTraceContext())
	}

	// 健康检查
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	if m != nil {
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}
	if !cfg.IsRelease() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.StaffAuth(jwtManager))
	if cfg.Server.RateLimit > 0 {
		v1.Use(middleware.StaffRateLimit(redisClient, cfg.Server.RateLimit, time.Minute))
	}
	v1.Use(opLogger.Log())
	{
		bookingH.RegisterRoutes(v1)
		folioH.RegisterRoutes(v1)
		roomH.RegisterRoutes(v1)
		taxH.RegisterRoutes(v1)

		manager := v1.Group("")
		manager.Use(middleware.RequireRoles(jwt.RoleManager))
		{
			taxH.RegisterManagerRoutes(manager)
			auditH.RegisterManagerRoutes(manager)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})
}
