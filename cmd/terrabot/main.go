package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"

	"github.com/terra-agro/terrabot/core/bootstrap"
	"github.com/terra-agro/terrabot/core/cmd"
	coreconfig "github.com/terra-agro/terrabot/core/config"
	"github.com/terra-agro/terrabot/core/state"
	"github.com/terra-agro/terrabot/core/whatsapp"
	"github.com/terra-agro/terrabot/core/whatsapp/webhook"
	"github.com/terra-agro/terrabot/export"
	"github.com/terra-agro/terrabot/flow"
	"github.com/terra-agro/terrabot/store"
)

type app struct {
	handler   http.Handler
	db        *sqlx.DB
	scheduler gocron.Scheduler
}

func (a *app) Handler() http.Handler {
	return a.handler
}

func (a *app) Shutdown(context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			return fmt.Errorf("scheduler shutdown: %w", err)
		}
	}
	return a.db.Close()
}

func build(cfg *coreconfig.Config) (cmd.App, error) {
	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	manager, err := state.New(cfg.State)
	if err != nil {
		return nil, err
	}

	st := store.New(res.DB)

	var exporter flow.Exporter
	var scheduler gocron.Scheduler
	if cfg.Export.Enabled {
		e := export.New(st, cfg.Export, loc)
		exporter = e
		if cfg.Export.IntervalMinutes > 0 {
			scheduler, err = export.Schedule(e, time.Duration(cfg.Export.IntervalMinutes)*time.Minute)
			if err != nil {
				return nil, fmt.Errorf("start export scheduler: %w", err)
			}
		}
	}

	dispatcher := flow.New(flow.Options{
		Sender:   whatsapp.NewClient(cfg.WhatsApp),
		Store:    st,
		State:    manager,
		Config:   cfg,
		Exporter: exporter,
		Location: loc,
	})

	handler := webhook.NewHandler(webhook.Options{
		VerifyToken:  cfg.WhatsApp.VerifyToken,
		Dispatcher:   dispatcher,
		RateInterval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
	})

	return &app{handler: handler.Mux(), db: res.DB, scheduler: scheduler}, nil
}

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        coreconfig.Load,
		Build:             build,
	})
	if err != nil {
		log.Fatalf("terrabot: %v", err)
	}
}
