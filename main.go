package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/excel"
	"github.com/example/lexibot/internal/remind"
	"github.com/example/lexibot/internal/reviewlock"
	"github.com/example/lexibot/internal/study"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	words := database.NewWordRepository()
	collections := database.NewCollectionRepository()
	mastery := database.NewMasteryRepository()
	plans := database.NewReviewPlanRepository()
	settings := database.NewSettingsRepository()
	locks := reviewlock.NewManager(database.NewLockRepository())

	svc := study.NewService(words, mastery, plans, locks, database.NewSessionRepository())

	// IMPORT_FILE lets a deployment seed its word lists at startup.
	if path := os.Getenv("IMPORT_FILE"); path != "" {
		importer := excel.NewImporter(collections, words, mastery)
		config := excel.DefaultConfig()
		config.FilePath = path
		result, err := importer.Import(ctx, config)
		if err != nil {
			log.Fatalf("Failed to import %s: %v", path, err)
		}
		log.Printf("Imported %s: %d created, %d skipped, %d collections created, %d errors",
			path, result.Created, result.Skipped, result.CollectionsCreated, len(result.Errors))
		for _, e := range result.Errors {
			log.Printf("Import error: %s", e)
		}
	}

	reminders := remind.New(remind.LogNotifier{}, settings, svc)
	reminders.Start()
	defer reminders.Stop()

	log.Println("Study engine started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
	cancel()
}
