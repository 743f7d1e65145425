package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/api"
	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/metrics"
	"rollcall/internal/photo"
	"rollcall/internal/session"
	"rollcall/internal/students"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	backend := api.New(cfg.ServiceURL, cfg.HTTPTimeout)
	met := metrics.New(prometheus.DefaultRegisterer)

	registry := session.NewRegistry(backend)
	sess := session.New(context.Background(), registry)

	a := &app{
		cfg:      cfg,
		backend:  backend,
		sess:     sess,
		registry: registry,
		att:      attendance.NewWorkflow(backend, met),
		form: students.NewRegistration(backend, func(ctx context.Context) {
			_ = registry.Refresh(ctx)
		}),
		dir:     students.NewDirectory(backend),
		camera:  &photo.Camera{Command: cfg.CameraCommand, MaxDim: cfg.PhotoMaxDim},
		library: &photo.Library{Dir: cfg.PhotoLibraryDir, MaxDim: cfg.PhotoMaxDim},
	}

	if err := backend.Health(context.Background()); err != nil {
		log.Printf("warning: attendance service not reachable: %v", err)
	} else {
		log.Println("attendance service connected:", cfg.ServiceURL)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		err := backend.Health(c.Request.Context())
		status := http.StatusOK
		if err != nil {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "service": err == nil})
	})

	r.POST("/api/login", a.handleLogin)

	ui := r.Group("/api")
	if cfg.OperatorPIN != "" {
		ui.Use(auth.OperatorAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	} else {
		log.Println("OPERATOR_PIN not set, UI runs without login")
	}
	a.routes(ui)

	r.StaticFile("/", "web/index.html")

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting rollcall on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
