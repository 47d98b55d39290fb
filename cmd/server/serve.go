package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"exodash/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", ":8050", "listen address")
	cmd.Flags().Int("page-size", 10, "rows per page of the data preview")
	cmd.Flags().Float64("rate-limit", 0, "requests per second per client, 0 disables limiting")
}

func init() {
	addServeFlags(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// the table is loaded before listening; a dashboard without data is useless
	cfg, table, err := setup(cmd)
	if err != nil {
		return err
	}
	defer table.Release()

	h, err := api.NewHandler(table, cfg)
	if err != nil {
		return err
	}
	e := api.NewServer(h, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(log.Fields{"addr": cfg.Addr, "rows": table.NumRows()}).Info("dashboard ready")
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
