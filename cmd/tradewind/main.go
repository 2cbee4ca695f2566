// Command tradewind runs the headless trading-sea simulation: city markets,
// NPC trade traffic, the game clock, and the observer API, persisting the
// session to SQLite.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/seafall/tradewind/internal/api"
	"github.com/seafall/tradewind/internal/content"
	"github.com/seafall/tradewind/internal/persistence"
	"github.com/seafall/tradewind/internal/sim"
)

// updateInterval is the real-time step of the headless loop.
const updateInterval = 100 * time.Millisecond

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	// ── Content ───────────────────────────────────────────────────────
	c, err := content.Load(cfg.ContentDir)
	if err != nil {
		slog.Error("content failed to load", "dir", cfg.ContentDir, "error", err)
		os.Exit(1)
	}
	slog.Info("content loaded",
		"goods", len(c.Goods),
		"cities", len(c.Cities),
		"ships", len(c.Ships),
		"enemies", len(c.Enemies))

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Session (restore or new) ──────────────────────────────────────
	session, err := sim.NewSession(c, cfg.Run)
	if err != nil {
		slog.Error("session failed to start", "error", err)
		os.Exit(1)
	}

	if db.HasSession() {
		if err := db.LoadSession(session); err != nil {
			slog.Error("saved session failed to restore", "error", err)
			os.Exit(1)
		}
	} else if err := db.SaveSession(session); err != nil {
		slog.Error("initial save failed", "error", err)
	}

	// Scripted mode: run a fixed number of days as fast as possible,
	// save, and exit. Useful for seeding worlds and soak-testing economies.
	if cfg.RunDays > 0 {
		slog.Info("scripted run", "days", cfg.RunDays)
		for i := 0; i < cfg.RunDays; i++ {
			session.ForceNextDay()
		}
		if err := db.SaveSession(session); err != nil {
			slog.Error("final save failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Ran %d days, now on day %d. Session saved.\n", cfg.RunDays, session.Day())
		return
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{Session: session, Port: cfg.APIPort}
	apiServer.Start()

	// ── Run loop ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	status := session.Status()
	player := session.PlayerState()
	fmt.Printf("\nTradewind: day %d, %d cities, %s gold aboard.\n",
		status.Day, status.Cities, humanize.Comma(int64(player.Money)))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Running... (Ctrl+C to stop)")

	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	lastSavedDay := session.Day()
	running := true
	for running {
		select {
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			running = false

		case <-ticker.C:
			session.Update(updateInterval.Seconds() * cfg.Speed)

			day := session.Day()
			if day-lastSavedDay >= cfg.Run.AutosaveEveryDays {
				if err := db.SaveSession(session); err != nil {
					slog.Error("autosave failed", "error", err)
				}
				lastSavedDay = day
			}
		}
	}

	slog.Info("final save...")
	if err := db.SaveSession(session); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Stopped. Session saved.")
}
