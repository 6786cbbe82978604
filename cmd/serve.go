package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveSource  string
	serveSegment string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long:  "Serves scored accounts, at-risk lists, KPI rollups, and playbook recommendations over HTTP. The snapshot is computed at startup; POST /api/refresh recomputes it from the source.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := initEngine("")
		if err != nil {
			return err
		}

		src, closeSrc, err := initSource(ctx, serveSource, serveSegment)
		if err != nil {
			return err
		}
		defer closeSrc()

		api := newAPIServer(engine, src)
		if err := api.refresh(ctx); err != nil {
			return eris.Wrap(err, "initial snapshot")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.router(cfg.Server),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("source", serveSource),
			zap.Int("accounts", api.snap.Load().Len()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveSource, "source", "store", "account source: fixture, store, or crm")
	serveCmd.Flags().StringVar(&serveSegment, "segment", "", "only serve accounts in this segment")
	rootCmd.AddCommand(serveCmd)
}
