package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"project/database"
	"project/routes"
	"project/scheduler"
	"project/utils"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env without overriding variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("[startup] no .env file loaded: %v", err)
	}

	required := []string{"DB_HOST", "DB_USER", "DB_PASS", "DB_NAME", "JWT_SECRET"}
	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 && os.Getenv("DB_DSN") == "" {
		log.Fatalf("[startup] missing required env vars: %s", strings.Join(missing, ", "))
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("[startup] database connection failed: %v", err)
	}

	if strings.ToLower(os.Getenv("ENV")) != "production" {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("[startup] migration failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := scheduler.NewAccrualJob(db, utils.RedisClient)
	if raw := os.Getenv("ROI_SWEEP_INTERVAL_SEC"); raw != "" {
		sec, err := strconv.Atoi(raw)
		if err != nil || sec < 1 {
			log.Fatalf("[startup] invalid ROI_SWEEP_INTERVAL_SEC: %q", raw)
		}
		go job.Run(ctx, time.Duration(sec)*time.Second)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           routes.InitRouter(job),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[startup] listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[startup] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[shutdown] signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[shutdown] forced close: %v", err)
	}
	log.Printf("[shutdown] done")
}
