package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"clabs/internal/config"
	"clabs/internal/database"
	"clabs/internal/logger"
	"clabs/internal/repository"
)

type seatCounter interface {
	SeatDrift(ctx context.Context, eventID int64) ([]repository.SeatDrift, error)
	SetAvailableSeats(ctx context.Context, eventID int64, available int) error
}

func main() {
	var (
		eventID int64
		dryRun  bool
	)
	flag.Int64Var(&eventID, "event", 0, "Event ID to sync seats for (0 = all events)")
	flag.BoolVar(&dryRun, "dry-run", false, "Report drift without changing counters")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting seat synchronization", "event_id", eventID, "dry_run", dryRun)

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	eventRepo := repository.NewEventRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fixed, err := syncSeats(ctx, eventRepo, eventID, dryRun)
	if err != nil {
		logger.Fatal("Seat synchronization failed", "error", err)
	}

	slog.Info("Seat synchronization completed successfully", "events_fixed", fixed)
}

// syncSeats приводит available_seats к total_seats минус активные регистрации.
// Возвращает количество исправленных (или, при dryRun, найденных) расхождений.
func syncSeats(ctx context.Context, repo seatCounter, eventID int64, dryRun bool) (int, error) {
	start := time.Now()

	drifts, err := repo.SeatDrift(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to load seat counters: %w", err)
	}
	if eventID != 0 && len(drifts) == 0 {
		return 0, repository.ErrEventNotFound
	}

	fixed := 0
	for _, d := range drifts {
		if !d.Drifted() {
			continue
		}

		slog.Warn("Seat counter drift",
			"event_id", d.EventID,
			"title", d.Title,
			"total_seats", d.TotalSeats,
			"available_seats", d.AvailableSeats,
			"active_registrations", d.ActiveRegistrations,
			"expected", d.Expected())

		if !dryRun {
			if err := repo.SetAvailableSeats(ctx, d.EventID, d.Expected()); err != nil {
				return fixed, fmt.Errorf("failed to fix event %d: %w", d.EventID, err)
			}
		}
		fixed++
	}

	slog.Info("Seat counters checked", "events", len(drifts), "drifted", fixed, "duration", time.Since(start))
	return fixed, nil
}
