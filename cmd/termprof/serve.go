package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termprof"
	"pkt.systems/termprof/core"
	"pkt.systems/termprof/httpapi"
	"pkt.systems/termprof/internal/appconfig"
	"pkt.systems/termprof/internal/confstore"
	"pkt.systems/termprof/internal/contrib"
	"pkt.systems/termprof/internal/detect"
	"pkt.systems/termprof/internal/remotedetect"
	"pkt.systems/termprof/schema"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the profile service and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}

			store, err := confstore.New(cfg.ProfilesPath, logger)
			if err != nil {
				return err
			}

			deps := core.ServiceDeps{
				Local:         detect.New(logger),
				Config:        store,
				Contributions: contrib.New(),
				Logger:        logger,
			}
			if cfg.Remote.Addr != "" {
				client, err := remotedetect.New(remoteConfig(cfg.Remote), logger)
				if err != nil {
					return err
				}
				deps.Remote = client
				deps.RemoteEnv = client
				logger.Info("remote detection enabled", "addr", cfg.Remote.Addr, "user", cfg.Remote.User)
			}

			server, err := termprof.New(termprof.ServerConfig{
				Service:    buildServiceConfig(cfg),
				HTTP:       httpapi.Config{Addr: cfg.HTTP.Addr},
				HubHistory: 100,
			}, termprof.ServerDeps{ServiceDeps: deps}, termprof.WithHTTP())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			logger.Info("http server listening", "addr", cfg.HTTP.Addr)
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}

func buildServiceConfig(cfg appconfig.Config) schema.ServiceConfig {
	return schema.ServiceConfig{
		RefreshInterval: time.Duration(cfg.Service.RefreshIntervalMS) * time.Millisecond,
		ReadyTimeout:    time.Duration(cfg.Service.ReadyTimeoutSeconds) * time.Second,
		WebHost:         cfg.Service.WebHost,
		IncludeDetected: cfg.Service.IncludeDetected,
	}
}

func remoteConfig(cfg appconfig.RemoteConfig) remotedetect.Config {
	return remotedetect.Config{
		Addr:           cfg.Addr,
		User:           cfg.User,
		KeyPath:        cfg.KeyPath,
		Password:       cfg.Password,
		KnownHostsPath: cfg.KnownHostsPath,
		Timeout:        time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}
