package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsledger/config"
	"whatsledger/internal/database"
	"whatsledger/internal/dedup"
	"whatsledger/internal/repository"
	"whatsledger/internal/router"
	"whatsledger/internal/service"
	"whatsledger/internal/worker"
	"whatsledger/internal/ws"
	"whatsledger/pkg/cloudinary"
	"whatsledger/pkg/whatsapp"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db, &cfg.Admin)

	if err := service.LoadWhatsAppOverrides(repository.NewSettingRepository(db), &cfg.WhatsApp); err != nil {
		log.Printf("[settings] stored WhatsApp overrides not applied: %v", err)
	}

	var seen dedup.Store = dedup.NewMemoryStore(cfg.Redis.DedupTTL)
	if cfg.Redis.Addr != "" {
		rdb, err := dedup.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("[redis] %v; duplicate detection stays in memory", err)
		} else {
			defer rdb.Close()
			seen = dedup.NewRedisStore(rdb, cfg.Redis.DedupTTL)
		}
	}

	sender := whatsapp.New(cfg.WhatsApp)
	log.Printf("[whatsapp] active provider: %s", sender.Name())

	deps := router.Deps{Sender: sender, Seen: seen, Hub: ws.NewHub()}
	if cfg.Cloudinary.Enabled() {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		deps.Cloud = cloud
	} else {
		log.Println("[cloudinary] receipt uploads disabled: set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
	}

	dispatch := router.NewDispatcher(cfg, db, deps)
	engine := router.Setup(cfg, db, dispatch, deps)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if bb, ok := sender.(*whatsapp.BotbizClient); ok && cfg.WhatsApp.Botbiz.PollingEnabled {
		go worker.NewBotbizPoller(bb, dispatch, cfg.WhatsApp.Botbiz.PollingInterval).Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
