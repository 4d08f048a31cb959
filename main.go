package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mvp-tweet/internal/config"
	"mvp-tweet/internal/database"
	"mvp-tweet/internal/logging"
	"mvp-tweet/internal/presence"
	"mvp-tweet/internal/router"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.yaml if present)")
	flag.Parse()

	// load configuration; a missing jwt secret stops startup here
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatalf("setup logging: %v", err)
	}
	defer logCloser.Close()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer database.Close(db)

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store := database.NewStore(db)

	// first-run demo accounts, only from an explicit seed file
	if cfg.Seed.File != "" {
		accounts, err := database.LoadSeedFile(cfg.Seed.File)
		if err != nil {
			log.Fatalf("load seed file: %v", err)
		}
		n, err := database.SeedIfEmpty(context.Background(), store, accounts, cfg.Security.BcryptCost)
		if err != nil {
			log.Fatalf("seed database: %v", err)
		}
		if n > 0 {
			log.Printf("seeded %d demo accounts", n)
		}
	}

	tracker := presence.New(presence.WithTTL(time.Duration(cfg.Presence.TTLMinutes) * time.Minute))

	r := router.SetupRouter(cfg, store, tracker)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
