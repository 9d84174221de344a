package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/benchrig/rigcheck/internal/gate"
	"github.com/benchrig/rigcheck/internal/notify"
	"github.com/benchrig/rigcheck/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resident bench agent",
		Long:  "Serve the HTTP API, websocket progress feed and metrics, with optional scheduled runs.",
		RunE:  runServe,
	}
	flags := cmd.Flags()
	flags.String("addr", "", "listen address")
	flags.String("schedule", "", "cron expression for periodic runs")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	if cfg.MinKernel != "" {
		if warn := kernelWarning(cfg.MinKernel); warn != "" {
			log.Warnf("%s", warn)
		}
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	gates, err := gate.Compile(cfg.Gates)
	if err != nil {
		return err
	}
	notifiers, err := notify.Build(cfg.Notify)
	if err != nil {
		return err
	}

	store := openHistory(root, cfg, log)
	if store != nil {
		defer store.Close()
	}

	rig, err := os.Hostname()
	if err != nil {
		rig = "bench"
	}

	srv, err := server.New(server.Options{
		Addr:             cfg.Serve.Addr,
		Registry:         reg,
		Rig:              rig,
		History:          store,
		Notifiers:        notifiers,
		Gates:            gates,
		Schedule:         cfg.Serve.Schedule,
		ScheduleSections: cfg.Serve.ScheduleSections,
		Logger:           log,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-stop:
		log.Infof("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
