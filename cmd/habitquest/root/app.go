package root

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"habitquest/internal/config"
	"habitquest/internal/engine"
	"habitquest/internal/storage"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
	repo   *storage.SQLiteRepository
	svc    *engine.Service
}

func (a *app) close() {
	_ = a.logger.Sync()
	_ = a.repo.Close()
}

func configPath() string {
	if v := strings.TrimSpace(os.Getenv("HABITQUEST_CONFIG")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "habitquest.yaml"
	}
	return filepath.Join(home, ".habitquest", "config.yaml")
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		// A corrupt store is set aside and replaced with a fresh seeded one
		// rather than bringing the app down.
		logger.Warn("store unreadable, starting fresh", zap.String("path", cfg.DBPath), zap.Error(err))
		_ = os.Rename(cfg.DBPath, cfg.DBPath+".corrupt")
		repo, err = storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	svc := engine.NewService(repo)
	if err := svc.Seed(ctx, time.Now()); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}

	return &app{cfg: cfg, logger: logger, repo: repo, svc: svc}, nil
}

// newLogger writes structured logs next to the store so the TUI output stays
// clean. Logging failures fall back to a no-op logger.
func newLogger(cfg config.Config) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if cfg.Debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	logPath := filepath.Join(filepath.Dir(cfg.DBPath), "habitquest.log")
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
