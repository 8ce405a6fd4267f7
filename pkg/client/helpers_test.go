package client_test

import (
	"context"
	"net"
	"testing"

	pb "github.com/pixperk/lockbox/api/v1"
	"github.com/pixperk/lockbox/pkg/client"
	"github.com/pixperk/lockbox/pkg/lock"
	"github.com/pixperk/lockbox/pkg/server"
	"github.com/pixperk/lockbox/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type testServer struct {
	locks *lock.Registry
	store *storage.FileStore
	lis   *bufconn.Listener
	grpc  *grpc.Server
}

func startServer(tb testing.TB, authKey string) *testServer {
	tb.Helper()

	locks := lock.NewRegistry()
	store := storage.NewFileStoreFs(afero.NewMemMapFs(), locks)

	ts := &testServer{
		locks: locks,
		store: store,
		lis:   bufconn.Listen(1 << 20),
		grpc:  grpc.NewServer(server.ServerOptions(store.MaxChunkSize(), authKey, zerolog.Nop())...),
	}
	pb.RegisterFileServiceServer(ts.grpc, server.NewServer(locks, store))
	go ts.grpc.Serve(ts.lis)
	tb.Cleanup(ts.grpc.Stop)
	return ts
}

func (ts *testServer) connect(tb testing.TB, opts ...client.Option) *client.Client {
	tb.Helper()

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return ts.lis.DialContext(ctx)
	})
	opts = append([]client.Option{client.WithDialOptions(dialer)}, opts...)

	c, err := client.NewClient("passthrough:///bufnet", opts...)
	require.NoError(tb, err)
	tb.Cleanup(func() { c.Close() })
	return c
}
