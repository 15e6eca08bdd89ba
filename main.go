package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "kintai-backend/docs"
	"kintai-backend/internal/attendance"
	"kintai-backend/internal/identity"
	"kintai-backend/internal/invitation"
	"kintai-backend/internal/platform/auth"
	"kintai-backend/internal/platform/authz"
	"kintai-backend/internal/platform/db"
	"kintai-backend/internal/report"
	"kintai-backend/internal/settings"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[ERROR] jwt secret is not configured (auth.jwt_secret or KINTAI_JWT_SECRET)")
	}
	secret := []byte(cfg.Auth.JWTSecret)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 認可は毎回 user_roles を引く（JWTクレームに持たせない）
	authorizer := authz.New(identity.NewStore(conn))

	authSvc := auth.NewService(conn, secret)
	settingsSvc := settings.NewService(conn)
	inviteSvc := invitation.NewService(conn)
	identitySvc := identity.NewService(conn, authorizer, inviteSvc)
	attendanceSvc := attendance.NewService(conn, authorizer, settingsSvc)
	reportSvc := report.NewService(conn)

	// /api/v1
	api := r.Group("/api/v1")

	// 未認証: ログイン・登録・招待プリフィル
	auth.RegisterRoutes(api, authSvc)

	// 認証済み
	authed := api.Group("")
	authed.Use(auth.RequireAuth(secret))

	// manager/admin のみ
	priv := authed.Group("")
	priv.Use(authz.RequirePrivileged(authorizer))

	identity.RegisterRoutes(api, authed, priv, identitySvc)
	invitation.RegisterRoutes(api, priv, inviteSvc)
	attendance.RegisterRoutes(authed, priv, attendanceSvc)
	settings.RegisterRoutes(authed, priv, settingsSvc)
	report.RegisterRoutes(priv, reportSvc)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	var certFile, keyFile string

	// TLS設定
	if mode == "dev" {
		//開発用
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		//本番用
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Printf("[INFO] listening on https://0.0.0.0%s", cfg.Server.Addr)
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
