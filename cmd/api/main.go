package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"salesdesk/internal/access"
	"salesdesk/internal/core/auth"
	"salesdesk/internal/core/cache"
	"salesdesk/internal/core/config"
	"salesdesk/internal/core/database"
	"salesdesk/internal/core/logger"
	"salesdesk/internal/core/server"
	"salesdesk/internal/identity"
	"salesdesk/internal/repo"
	"salesdesk/internal/service"
	"salesdesk/internal/transport/http/handler"
	"salesdesk/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, cfg.DB.DSN, log)
	serviceDB := db
	if cfg.DB.ServiceDSN != cfg.DB.DSN {
		serviceDB = mustOpenDB(cfg, cfg.DB.ServiceDSN, log)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(repo.Models()...); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 身份服务 + 守卫
	jwter := &auth.JWTer{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.SessionTTL(),
	}
	idp, err := identity.FromConfig(cfg.Identity, jwter, log)
	if err != nil {
		log.Fatal("identity provider", zap.Error(err))
	}
	var bearer access.TokenVerifier = identity.LocalVerifier{JWT: jwter}
	if cfg.Auth.VerifyBearerRemotely {
		bearer = idp
	}
	roles := repo.NewRoleResolver(serviceDB)
	guard := access.NewGuard(cfg.Auth.SessionCookie, identity.LocalVerifier{JWT: jwter}, bearer, roles, log.Named("guard"))

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	profiles := repo.NewProfileRepo(db)
	products := repo.NewProductRepo(db)
	quotations := repo.NewQuotationRepo(db)
	catalogSvc := service.NewCatalogService(products, c, cfg.Redis.CatalogTTL(), log.Named("catalog"))
	quotationSvc := service.NewQuotationService(products, quotations, log.Named("quotation"))

	reg := router.NewRegistry(
		handler.NewSessionHandler(idp, roles, handler.CookieOptions{
			Name:   cfg.Auth.SessionCookie,
			Secure: cfg.Auth.SecureCookie,
		}, log),
		handler.NewMeHandler(profiles),
		handler.NewCatalogHandler(catalogSvc),
		handler.NewQuotationHandler(db, quotationSvc),
	)

	// 路由（用户端）
	r := router.NewAPIEngine(log, router.Options{
		Name:        "api",
		CORSOrigins: cfg.App.HTTP.CORSOrigins,
		Timeout:     time.Duration(cfg.App.HTTP.WriteTimeoutSec) * time.Second,
	}, guard, reg)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("sales api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.Bool("catalog_cache", c != nil),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("sales api start FAILED", zap.Error(err))
		}
	}()
	log.Info("sales api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if c != nil {
		_ = c.Close()
	}
	log.Info("sales api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, dsn string, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                dsn,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
