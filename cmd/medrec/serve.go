package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/medrec/internal/httpapi"
	"github.com/cognicore/medrec/pkg/medrec/metrics"
	"github.com/cognicore/medrec/pkg/medrec/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			mt := metrics.New(true)
			med, err := a.build(ctx, st, mt)
			if err != nil {
				return err
			}

			if a.cfg.Dataset.Watch && a.cfg.Dataset.Dir != "" {
				dir := a.cfg.Dataset.Dir
				w, err := watch.New(dir, func(ctx context.Context) error {
					return med.ReloadDir(ctx, dir)
				}, watch.Options{Logger: a.logger})
				if err != nil {
					return err
				}
				if err := w.Start(ctx); err != nil {
					return err
				}
				defer w.Stop()
			}

			gin.SetMode(gin.ReleaseMode)
			router := httpapi.NewRouter(httpapi.Options{
				Medrec:  med,
				Store:   st,
				Metrics: mt,
				Logger:  a.logger,
			})

			a.logger.Info("serving recommendations",
				zap.String("addr", a.cfg.HTTP.Addr),
				zap.Strings("strategies", med.Strategies()),
			)
			return httpapi.Serve(ctx, a.cfg.HTTP.Addr, router, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
