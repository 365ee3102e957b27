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

	// DB 连接（失败直接 Fatal）
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

	// 身份服务
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
	guard := access.NewGuard(cfg.Auth.SessionCookie, identity.LocalVerifier{JWT: jwter}, bearer,
		repo.NewRoleResolver(serviceDB), log.Named("guard"))

	// 目录缓存（未配置 redis 时不缓存）
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	profiles := repo.NewProfileRepo(db)
	products := repo.NewProductRepo(db)
	accountSvc := service.NewAccountService(idp, profiles, log.Named("account"), cfg.Store.CallTimeout())
	catalogSvc := service.NewCatalogService(products, c, cfg.Redis.CatalogTTL(), log.Named("catalog"))
	productSvc := service.NewProductService(products, catalogSvc, log.Named("product"))

	reg := router.NewRegistry(
		handler.NewAccountHandler(accountSvc),
		handler.NewProductHandler(productSvc),
	)

	// 路由（后台端）
	r := router.NewAdminEngine(log, router.Options{
		Name:        "admin",
		CORSOrigins: cfg.App.HTTP.CORSOrigins,
		Timeout:     time.Duration(cfg.App.HTTP.WriteTimeoutSec) * time.Second,
	}, guard, reg)

	// HTTP Server
	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动前打印可点击地址
	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
		zap.String("identity", cfg.Identity.Driver),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if c != nil {
		_ = c.Close()
	}
	log.Info("admin api stopped gracefully")
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
		l.Fatal("db open", zap.Error(err)) // 失败日志
	}
	return db
}
