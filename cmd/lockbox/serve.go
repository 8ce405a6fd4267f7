package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	pb "github.com/pixperk/lockbox/api/v1"
	_ "github.com/pixperk/lockbox/pkg/compress"
	"github.com/pixperk/lockbox/pkg/config"
	"github.com/pixperk/lockbox/pkg/gateway"
	"github.com/pixperk/lockbox/pkg/lock"
	"github.com/pixperk/lockbox/pkg/server"
	"github.com/pixperk/lockbox/pkg/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func newServeCmd() *cobra.Command {
	var listen, storageDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the file server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}
			if storageDir != "" {
				cfg.Server.StorageDir = storageDir
			}
			return runServe(cmd.Context(), cfg.Server)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "gRPC listen address (overrides config)")
	cmd.Flags().StringVar(&storageDir, "storage-dir", "", "directory holding the files (overrides config)")
	return cmd
}

func runServe(parent context.Context, cfg config.ServerConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chunk, err := cfg.ChunkBytes()
	if err != nil {
		return err
	}
	ttl, err := cfg.LockTTLDuration()
	if err != nil {
		return err
	}
	sweepEvery, err := cfg.SweepEvery()
	if err != nil {
		return err
	}

	lockOpts := []lock.Option{
		lock.WithTTL(ttl),
		lock.WithLogger(log.With().Str("component", "locks").Logger()),
	}
	srvOpts := []server.Option{server.WithLogger(log.With().Str("component", "server").Logger())}
	if cfg.JournalPath != "" {
		journal, err := storage.OpenJournal(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer journal.Close()
		lockOpts = append(lockOpts, lock.WithHook(journal.Hook(log.With().Str("component", "journal").Logger())))
		srvOpts = append(srvOpts, server.WithJournal(journal))
	}

	locks := lock.NewRegistry(lockOpts...)
	store, err := storage.NewFileStore(cfg.StorageDir, locks,
		storage.WithMaxChunkSize(chunk),
		storage.WithLogger(log.With().Str("component", "storage").Logger()),
	)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	srv := server.NewServer(locks, store, srvOpts...)

	if cfg.AuthKey == "" {
		log.Warn().Msg("auth key not set, accepting every client")
	}
	grpcServer := grpc.NewServer(server.ServerOptions(chunk, cfg.AuthKey, log.With().Str("component", "rpc").Logger())...)
	pb.RegisterFileServiceServer(grpcServer, srv)

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}

	log.Info().
		Str("listen", cfg.Listen).
		Str("storage", cfg.StorageDir).
		Int64("chunk_size", chunk).
		Dur("lock_ttl", ttl).
		Str("journal", cfg.JournalPath).
		Str("version", Version).
		Msg("starting lockbox server")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		srv.Sweep(ctx, sweepEvery)
		return nil
	})

	var gw *gateway.Server
	if cfg.MetricsListen != "" {
		gw = gateway.NewServer(cfg.MetricsListen, func(context.Context) error {
			_, err := os.Stat(cfg.StorageDir)
			return err
		})
		g.Go(func() error {
			log.Info().Str("listen", cfg.MetricsListen).Msg("metrics and health listening")
			return gw.Start(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		grpcServer.GracefulStop()
		if gw != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return gw.Stop(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}
