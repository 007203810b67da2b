package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"clabs/internal/config"
	"clabs/internal/database"
	"clabs/internal/logger"
	"clabs/internal/models"
	"clabs/internal/repository"
	"clabs/internal/service"
)

var (
	count     = flag.Int("count", 5, "Number of demo events to create")
	seats     = flag.Int("seats", 30, "Seat capacity of every event")
	price     = flag.Float64("price", 500, "Ticket price in major currency units (0 = free event)")
	startDays = flag.Int("start-days", 7, "Days from now until the first event")
	dryRun    = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var programs = []struct {
	title       string
	description string
}{
	{"Robotics Workshop", "Build and program a line-following robot."},
	{"Young Coders Bootcamp", "Intro to programming with Python."},
	{"Science Olympiad Prep", "Practice problems and lab experiments."},
	{"Electronics Lab", "Circuits, sensors and soldering basics."},
	{"Astronomy Night", "Telescope session and sky mapping."},
	{"Math Circle", "Puzzles and competition mathematics."},
}

var locations = []string{"C-LABS Main Campus", "City Science Centre", "Online"}

type eventCreator interface {
	Create(ctx context.Context, event *models.Event) error
}

type EventGenerator struct {
	repo eventCreator
	rnd  *rand.Rand
	now  time.Time
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting event generator...")

	if *count < 1 || *seats < 1 || *price < 0 {
		slog.Error("Invalid flags", "count", *count, "seats", *seats, "price", *price)
		os.Exit(1)
	}

	generator := &EventGenerator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now(),
	}

	if *dryRun {
		for _, event := range generator.buildEvents(*count, *seats, service.ToMinorUnits(*price), *startDays) {
			slog.Info("Would create event", "title", event.Title, "date", event.EventDate, "seats", event.TotalSeats, "price_minor", event.PriceMinor)
		}
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	generator.repo = repository.NewEventRepository(db)

	created, err := generator.Generate(context.Background(), *count, *seats, service.ToMinorUnits(*price), *startDays)
	if err != nil {
		slog.Error("Failed to generate events", "created", created, "error", err)
		os.Exit(1)
	}

	slog.Info("Event generation completed successfully!", "created", created)
}

// Generate создает count мероприятий с одинаковой вместимостью и ценой.
func (g *EventGenerator) Generate(ctx context.Context, count, seats int, priceMinor int64, startDays int) (int, error) {
	created := 0
	for _, event := range g.buildEvents(count, seats, priceMinor, startDays) {
		if err := g.repo.Create(ctx, &event); err != nil {
			return created, fmt.Errorf("failed to create event %q: %w", event.Title, err)
		}
		slog.Info("Created event", "event_id", event.ID, "title", event.Title, "seats", event.TotalSeats)
		created++
	}
	return created, nil
}

func (g *EventGenerator) buildEvents(count, seats int, priceMinor int64, startDays int) []models.Event {
	first := g.now.AddDate(0, 0, startDays).Truncate(24 * time.Hour).Add(10 * time.Hour)

	events := make([]models.Event, 0, count)
	for i := 0; i < count; i++ {
		program := programs[i%len(programs)]
		title := program.title
		if i >= len(programs) {
			title = fmt.Sprintf("%s #%d", program.title, i/len(programs)+1)
		}

		events = append(events, models.Event{
			Title:          title,
			Description:    program.description,
			EventDate:      first.AddDate(0, 0, i*7),
			Location:       locations[g.rnd.Intn(len(locations))],
			PriceMinor:     priceMinor,
			TotalSeats:     seats,
			AvailableSeats: seats,
		})
	}
	return events
}
