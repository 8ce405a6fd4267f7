package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pixperk/lockbox/pkg/client"
	"github.com/pixperk/lockbox/pkg/compress"
	"github.com/pixperk/lockbox/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"

	cfgFile  string
	logLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lockbox",
		Short: "lockbox - networked flat file store with per-file locks",
		Long: `lockbox serves a flat directory of files over gRPC. Writers take a
per-file lock before replacing or deleting a file; readers never lock.

  # Start a server
  lockbox serve

  # Upload, list, download and delete
  lockbox put ./report.csv
  lockbox ls
  lockbox get report.csv
  lockbox rm report.csv`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(),
		newListCmd(),
		newPutCmd(),
		newGetCmd(),
		newRemoveCmd(),
		newStatusCmd(),
		newHistoryCmd(),
	)

	return rootCmd
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if logLevel != "" {
		level = logLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// loads the config and configures logging from it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		setupLogging("")
		return nil, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// connects a client session using the client section of the config
func connect(ctx context.Context) (*config.Config, *client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	chunk, err := cfg.Client.ChunkBytes()
	if err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.Client.TimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	opts := []client.Option{
		client.WithChunkSize(int(chunk)),
		client.WithAuthKey(cfg.Client.AuthKey),
		client.WithLogger(log.Logger),
	}
	if cfg.Client.Compression == compress.Name {
		opts = append(opts, client.WithCompression(compress.Name))
	}

	c, err := client.NewClient(cfg.Client.Server, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Ping(ctx, timeout); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Client.Server, err)
	}

	log.Debug().Str("server", cfg.Client.Server).Str("holder", c.Holder()).Msg("connected")
	return cfg, c, nil
}
