package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/civiscope/civiscope/internal/config"
	"github.com/civiscope/civiscope/internal/database"
	"github.com/civiscope/civiscope/internal/database/repository"
	"github.com/civiscope/civiscope/internal/logging"
	"github.com/civiscope/civiscope/internal/service"
	"github.com/civiscope/civiscope/internal/store"
	"github.com/civiscope/civiscope/internal/tui"
	"github.com/civiscope/civiscope/internal/watch"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog, err := logging.Open(cfg.Logging.Path, cfg.Logging.Debug)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLog()

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// datasets
	zones := store.NewZoneStore(logger)
	if res, err := zones.LoadFile(cfg.ZonesPath()); err != nil {
		log.Fatalf("load zones: %v", err)
	} else if len(res.RowErrors) > 0 {
		logger.Warn("zone rows skipped", zap.Int("count", len(res.RowErrors)))
	}
	budget := store.NewBudgetStore(logger)
	if res, err := budget.LoadFile(cfg.BudgetPath()); err != nil {
		log.Fatalf("load budget: %v", err)
	} else if len(res.RowErrors) > 0 {
		logger.Warn("budget rows skipped", zap.Int("count", len(res.RowErrors)))
	}

	plans := &service.PlanService{
		Plans:       repository.NewPlanRepo(db),
		Adjustments: repository.NewAdjustmentRepo(db),
		Zones:       zones,
		Budget:      budget,
		Logger:      logger,
	}

	var watcher *watch.Watcher
	if cfg.Data.Watch {
		watcher, err = watch.New(
			[]string{cfg.ZonesPath(), cfg.BudgetPath()},
			500*time.Millisecond, logger,
		)
		if err != nil {
			logger.Warn("file watching disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			watcher.Start(ctx)
		}
	}

	app := tui.New(ctx, cfg, tui.Stores{Zones: zones, Budget: budget}, plans, watcher, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
