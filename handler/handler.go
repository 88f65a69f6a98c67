package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pyama86/snowpanel/domain/repository"
)

// App は設定からSessionGate、incident API、Panelを組み立てる
type App struct {
	Config  *repository.Config
	Session *repository.SessionGate
	Panel   *Panel
}

func NewApp(configPath string) (*App, error) {
	cfgRepository, err := repository.NewConfigRepository(configPath)
	if err != nil {
		return nil, err
	}
	return NewAppWithConfig(cfgRepository)
}

func NewAppWithConfig(cfg *repository.Config) (*App, error) {
	session, err := repository.NewSessionGate(cfg.API, cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session gate: %w", err)
	}
	incidentRepository := repository.NewIncidentAPIRepository(session.Client(), cfg.API)
	repo := repository.NewRepository(incidentRepository, session)

	slog.Info("App configured", slog.String("base_url", cfg.API.BaseURL))
	return &App{
		Config:  cfg,
		Session: session,
		Panel:   NewPanel(repo),
	}, nil
}

// Login はログインして一覧を取得する
func (a *App) Login(ctx context.Context) error {
	if err := a.Session.Login(ctx); err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}
	return a.Panel.List(ctx)
}

func (a *App) Close() {
	a.Session.Close()
}
