package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/1broseidon/tether/internal/cluster"
	"github.com/1broseidon/tether/internal/config"
	"github.com/1broseidon/tether/internal/daemon"
	"github.com/1broseidon/tether/internal/eventloop"
	"github.com/1broseidon/tether/internal/hotkeys"
	"github.com/1broseidon/tether/internal/ipc"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the layout daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts)
		},
	}
}

func runDaemon(ctx context.Context, opts *rootOptions) error {
	res, path, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config
	logger := opts.logger(cfg)
	if res.File == "" {
		logger.Info("no config file found, using defaults", "path", path)
	} else {
		logger.Info("configuration loaded", "path", res.File)
	}

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		return err
	}
	defer backend.Disconnect()

	loop := eventloop.New(logger)
	reg := registry.NewEmpty()
	cl := cluster.New(reg, backend, loop, cfg, logger)

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.ReconcileInterval(),
		Rules:    cfg.Windows.Rules(),
		Logger:   logger,
	}, reg, backend.FindWindow, backend.Watch, cl.Reflow)

	keys, err := hotkeys.NewHandler(backend, cl, logger)
	if err != nil {
		return err
	}
	if err := keys.Bind(cfg.Hotkeys); err != nil {
		logger.Warn("failed to register hotkeys", "error", err)
	}

	var reloadMu sync.Mutex
	reload := func() error {
		reloadMu.Lock()
		defer reloadMu.Unlock()

		next, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		cl.Apply(next.Config)
		reconciler.SetRules(next.Config.Windows.Rules())
		if err := keys.Bind(next.Config.Hotkeys); err != nil {
			logger.Warn("failed to register hotkeys", "error", err)
		}
		logger.Info("configuration reloaded", "path", path)
		return nil
	}

	ipcServer, err := ipc.NewServer(cl, reload, logger)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		reconciler.Run(gctx)
		return nil
	})

	g.Go(func() error {
		err := config.Watch(gctx, path, config.DefaultWatchDebounce, func() {
			if err := reload(); err != nil {
				logger.Warn("config reload failed, keeping previous settings", "error", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config file watching disabled", "path", path, "error", err)
		}
		return nil
	})

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				if err := reload(); err != nil {
					logger.Warn("config reload failed, keeping previous settings", "error", err)
				}
			}
		}
	})

	// xgbutil dispatches window and key events from its own loop.
	go backend.EventLoop()
	g.Go(func() error {
		<-gctx.Done()
		backend.StopEventLoop()
		return nil
	})

	logger.Info("tether daemon started", "socket", ipcServer.SocketPath())
	err = g.Wait()
	logger.Info("tether daemon stopped")
	return err
}
