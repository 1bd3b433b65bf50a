package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tablekit/dmn"
	"github.com/tablekit/dmn/metrics"
	"github.com/tablekit/dmn/reader"
	"github.com/tablekit/dmn/server"
)

const (
	ServeDirKey   = "serve.dir"
	ServeAddrKey  = "serve.addr"
	ServeWatchKey = "serve.watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the decisions of a directory over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString(ServeDirKey)
		addr := viper.GetString(ServeAddrKey)

		vault, err := dmn.NewVault()
		if err != nil {
			return err
		}
		watcher := reader.NewWatcher(dir, vault, reader.WithLogger(log.Logger))
		if err := watcher.Load(); err != nil {
			return fmt.Errorf("loading decisions: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if viper.GetBool(ServeWatchKey) {
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					log.Error().Err(err).Msg("watching decisions failed, reloading disabled")
				}
			}()
		}

		ev := newEvaluator(dmn.WithObserver(metrics.New(prometheus.DefaultRegisterer)))
		srv := &http.Server{
			Addr:              addr,
			Handler:           server.New(vault, ev, server.WithLogger(log.Logger)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("server crashed: %w", err)
		case <-ctx.Done():
		}
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("dir", "decisions", "directory of decision files")
	_ = viper.BindPFlag(ServeDirKey, serveCmd.Flags().Lookup("dir"))

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	_ = viper.BindPFlag(ServeAddrKey, serveCmd.Flags().Lookup("addr"))

	serveCmd.Flags().Bool("watch", true, "reload decisions when files change")
	_ = viper.BindPFlag(ServeWatchKey, serveCmd.Flags().Lookup("watch"))
}
