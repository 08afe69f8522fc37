// Package main is the entry point for the PDF Insights API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/config"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/handlers"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/middleware"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/router"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pipeline"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/worker"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	mintFor := flag.String("mint-token", "", "print a Bearer token for this subject (uses JWT_SECRET) and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of a token minted with -mint-token")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if *mintFor != "" {
		mintToken(cfg, *mintFor, *tokenTTL)
		return
	}

	log.Printf("🚀 PDF Insights API %s starting...", Version)
	log.Printf("📋 Config loaded: port=%s, workers=%d, store=%s, gin_mode=%s",
		cfg.Port, cfg.WorkerCount, cfg.StoreBackend, cfg.GinMode)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Open the metadata store
	ctx := context.Background()
	metaStore, err := store.Open(ctx, store.Options{
		Backend:        cfg.StoreBackend,
		DatabaseURL:    cfg.DatabaseURL,
		MigrationsPath: cfg.MigrationsPath,
		ProjectID:      cfg.FirestoreProjectID,
		Collection:     cfg.FirestoreCollection,
	})
	if err != nil {
		log.Fatalf("❌ Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer metaStore.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("❌ Cannot create upload directory %s: %v", cfg.UploadDir, err)
	}

	// Step 3: Create Services
	pipe := pipeline.New(pipeline.Options{
		UploadDir:        cfg.UploadDir,
		SummarySentences: cfg.SummarySentences,
		KeywordCount:     cfg.KeywordCount,
	}, pdf.NewSource(), metaStore)

	// Step 4: Create the Worker Pool
	wp := worker.NewPool(cfg.WorkerCount, pipe)
	log.Printf("👷 Batches run on %d workers", wp.WorkerCount())

	if cfg.JWTSecret != "" {
		log.Println("✅ Bearer auth enabled for /upload, /parse and /download")
	} else {
		log.Println("⚠️  No JWT_SECRET set (upload and download endpoints are open)")
	}

	// Step 5: Setup HTTP Router
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitEvery, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	h := handlers.NewHandler(metaStore, wp, cfg.MaxUploadBytes)
	r := router.Setup(h, router.Options{
		AllowedOrigins:       cfg.AllowedOrigins,
		JWTSecret:            cfg.JWTSecret,
		RateLimiter:          rateLimiter,
		MaxConcurrentBatches: cfg.MaxConcurrentBatches,
	})

	// Step 6: Start the HTTP Server
	// Batches of large PDFs take a while, so the write timeout is generous.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 7: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	// In-flight batches finish (or see their context cancelled) before the
	// deferred store Close runs.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}

// mintToken prints a Bearer token so operators can hand out access
// without a user system.
func mintToken(cfg *config.Config, subject string, ttl time.Duration) {
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET must be set to mint tokens")
	}
	token, err := middleware.GenerateJWT(subject, cfg.JWTSecret, ttl)
	if err != nil {
		log.Fatalf("❌ Failed to mint token: %v", err)
	}
	fmt.Println(token)
}
