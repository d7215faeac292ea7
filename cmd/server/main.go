package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripscout/config"
	"tripscout/internal/database"
	"tripscout/internal/nudge"
	"tripscout/internal/repository"
	"tripscout/internal/router"
	"tripscout/pkg/llm"
	"tripscout/pkg/mailer"
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

	settingRepo := repository.NewSettingRepository(db)
	if err := settingRepo.SeedDefaults(nudge.SeedDefaults()); err != nil {
		log.Printf("seed settings: %v", err)
	}

	mailClient := mailer.NewClient(cfg.Resend.APIKey, cfg.Resend.FromName, cfg.Resend.FromAddress, cfg.Resend.ReplyTo)
	if cfg.Resend.APIKey == "" {
		log.Printf("[Email] RESEND_API_KEY not set, email channel disabled")
	}

	deps := nudge.Deps{
		Settings:     nudge.NewSettingsCache(settingRepo, nil),
		Trips:        repository.NewTripRepository(db),
		Tasks:        repository.NewTaskRepository(db),
		Participants: repository.NewParticipantRepository(db),
		Ledger:       repository.NewNotificationRepository(db),
		Events:       repository.NewEventRepository(db),
		Mailer:       mailClient,
		QueueSize:    cfg.Nudge.EventQueueSize,
	}
	if gen := llm.NewGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model); gen != nil {
		deps.Generator = gen
	} else {
		log.Printf("[NudgeAI] OPENAI_API_KEY not set, using fallback copy")
	}
	engine := nudge.NewEngine(deps)

	scheduler := nudge.NewScheduler(engine, cfg.Nudge.Interval)
	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(cfg, db, engine),
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

	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	log.Println("server stopped")
}
