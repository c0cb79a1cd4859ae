package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"placementd/services/placement"
)

// Config holds runtime configuration for the placement service.
type Config struct {
	Addr        string `env:"PLACEMENT_ADDR,default=:8080"`
	DBDSN       string `env:"PLACEMENT_DB_DSN,required"`
	NATSURL     string `env:"PLACEMENT_NATS_URL"`
	SeedFile    string `env:"PLACEMENT_SEED_FILE"`
	WindowStart string `env:"PLACEMENT_WINDOW_START,default=2026-02-15"`
	WindowDays  int    `env:"PLACEMENT_WINDOW_DAYS,default=5"`
	DayStart    string `env:"PLACEMENT_DAY_START,default=08:00"`
	DayEnd      string `env:"PLACEMENT_DAY_END,default=12:00"`
	SlotMinutes int    `env:"PLACEMENT_SLOT_MINUTES,default=20"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Window(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Window builds the interview calendar described by the window fields.
func (c Config) Window() (placement.Window, error) {
	firstDay, err := time.Parse("2006-01-02", c.WindowStart)
	if err != nil {
		return placement.Window{}, fmt.Errorf("invalid PLACEMENT_WINDOW_START: %q", c.WindowStart)
	}
	if c.WindowDays <= 0 {
		return placement.Window{}, fmt.Errorf("PLACEMENT_WINDOW_DAYS must be positive, got %d", c.WindowDays)
	}

	dayStart, err := parseClock(c.DayStart)
	if err != nil {
		return placement.Window{}, fmt.Errorf("invalid PLACEMENT_DAY_START: %q", c.DayStart)
	}
	dayEnd, err := parseClock(c.DayEnd)
	if err != nil {
		return placement.Window{}, fmt.Errorf("invalid PLACEMENT_DAY_END: %q", c.DayEnd)
	}
	if dayEnd <= dayStart {
		return placement.Window{}, fmt.Errorf("PLACEMENT_DAY_END %s must be after PLACEMENT_DAY_START %s", c.DayEnd, c.DayStart)
	}

	if c.SlotMinutes <= 0 {
		return placement.Window{}, fmt.Errorf("PLACEMENT_SLOT_MINUTES must be positive, got %d", c.SlotMinutes)
	}
	slot := time.Duration(c.SlotMinutes) * time.Minute
	span := dayEnd - dayStart
	if span%slot != 0 {
		return placement.Window{}, fmt.Errorf("day span %s is not a whole number of %d-minute slots", span, c.SlotMinutes)
	}

	days := make([]time.Time, 0, c.WindowDays)
	for i := 0; i < c.WindowDays; i++ {
		days = append(days, firstDay.AddDate(0, 0, i).Add(dayStart))
	}

	w := placement.Window{
		Days:        days,
		SlotLength:  slot,
		SlotsPerDay: int(span / slot),
	}
	if err := w.Validate(); err != nil {
		return placement.Window{}, err
	}
	return w, nil
}

// parseClock converts an "HH:MM" string into an offset from midnight.
func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
