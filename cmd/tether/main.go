package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/tether/internal/config"
	"github.com/1broseidon/tether/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose    bool
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "tether",
		Short:        "tether keeps a cluster of windows arranged around an anchor window",
		Long:         `tether is a daemon that positions chat, transcript and settings windows around an anchor window, choosing a layout that fits the display the anchor is on and animating moves requested over IPC or MCP.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(fmt.Sprintf("tether %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (default: ~/.config/tether/config.yaml)")

	root.AddCommand(newDaemonCmd(opts))
	root.AddCommand(newStatusCmd())
	root.AddCommand(newReflowCmd())
	root.AddCommand(newAnimateCmd())
	root.AddCommand(newLockCmd(true))
	root.AddCommand(newLockCmd(false))
	root.AddCommand(newBoundsCmd())
	root.AddCommand(newVisibleCmd())
	root.AddCommand(newDisplaysCmd())
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newMCPCmd(opts))
	root.AddCommand(newTUICmd(opts))

	return root
}

func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultConfigPath()
}

func (o *rootOptions) loadConfig() (*config.LoadResult, string, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}

// logger builds the stderr logger. --verbose wins over the configured level.
func (o *rootOptions) logger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		if parsed, err := logging.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}
	if o.verbose {
		level = slog.LevelDebug
	}
	return logging.New(os.Stderr, level)
}
