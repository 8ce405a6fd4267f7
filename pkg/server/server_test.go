package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	pb "github.com/pixperk/lockbox/api/v1"
	"github.com/pixperk/lockbox/pkg/lock"
	"github.com/pixperk/lockbox/pkg/storage"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type harness struct {
	locks  *lock.Registry
	store  *storage.FileStore
	client pb.FileServiceClient
}

func startServer(t *testing.T, authKey string, opts ...Option) *harness {
	t.Helper()
	return startServerWith(t, lock.NewRegistry(), authKey, opts...)
}

func startServerWith(t *testing.T, locks *lock.Registry, authKey string, opts ...Option) *harness {
	t.Helper()

	store := storage.NewFileStoreFs(afero.NewMemMapFs(), locks, storage.WithMaxChunkSize(1<<10))

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(ServerOptions(store.MaxChunkSize(), authKey, zerolog.Nop())...)
	pb.RegisterFileServiceServer(gs, NewServer(locks, store, opts...))
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &harness{locks: locks, store: store, client: pb.NewFileServiceClient(conn)}
}

func TestSizeMissing(t *testing.T) {
	h := startServer(t, "")

	resp, err := h.client.Size(context.Background(), &pb.SizeRequest{Name: "missing.bin"})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), resp.Size)
}

func TestAcquireRelease(t *testing.T) {
	h := startServer(t, "")
	ctx := context.Background()

	acq, err := h.client.Acquire(ctx, &pb.AcquireRequest{Name: "report.csv", Holder: "A"})
	require.NoError(t, err)
	assert.True(t, acq.Acquired)

	acq, err = h.client.Acquire(ctx, &pb.AcquireRequest{Name: "report.csv", Holder: "B"})
	require.NoError(t, err)
	assert.False(t, acq.Acquired, "busy lock is a normal result, not an error")

	rel, err := h.client.Release(ctx, &pb.ReleaseRequest{Name: "report.csv", Holder: "B"})
	require.NoError(t, err)
	assert.False(t, rel.Released)

	rel, err = h.client.Release(ctx, &pb.ReleaseRequest{Name: "report.csv", Holder: "A"})
	require.NoError(t, err)
	assert.True(t, rel.Released)
}

func TestAcquireRequiresHolder(t *testing.T) {
	h := startServer(t, "")

	_, err := h.client.Acquire(context.Background(), &pb.AcquireRequest{Name: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestWriteUnderForeignLock(t *testing.T) {
	h := startServer(t, "")
	ctx := context.Background()
	require.True(t, h.locks.Acquire("a.txt", "B"))

	_, err := h.client.CreateEmpty(ctx, &pb.CreateEmptyRequest{Name: "a.txt", Holder: "A"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = h.client.WriteChunk(ctx, &pb.WriteChunkRequest{Name: "a.txt", Data: []byte("x"), Holder: "A"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	assert.Equal(t, types.SizeNotFound, h.store.Size("a.txt"))
}

func TestInvalidName(t *testing.T) {
	h := startServer(t, "")
	ctx := context.Background()

	_, err := h.client.Acquire(ctx, &pb.AcquireRequest{Name: "../etc/passwd", Holder: "A"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	size, err := h.client.Size(ctx, &pb.SizeRequest{Name: "../etc/passwd"})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size.Size)
}

func TestWriteReadDelete(t *testing.T) {
	h := startServer(t, "")
	ctx := context.Background()

	require.True(t, h.locks.Acquire("notes.txt", "A"))

	_, err := h.client.CreateEmpty(ctx, &pb.CreateEmptyRequest{Name: "notes.txt", Holder: "A"})
	require.NoError(t, err)
	for _, part := range []string{"hello ", "world"} {
		_, err = h.client.WriteChunk(ctx, &pb.WriteChunkRequest{Name: "notes.txt", Data: []byte(part), Holder: "A"})
		require.NoError(t, err)
	}

	list, err := h.client.List(ctx, &pb.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, list.Names)

	read, err := h.client.ReadChunk(ctx, &pb.ReadChunkRequest{Name: "notes.txt", Offset: 6, MaxSize: 100})
	require.NoError(t, err)
	assert.Equal(t, "world", string(read.Data))
	assert.False(t, read.Eof)

	read, err = h.client.ReadChunk(ctx, &pb.ReadChunkRequest{Name: "notes.txt", Offset: 11, MaxSize: 100})
	require.NoError(t, err)
	assert.Empty(t, read.Data)
	assert.True(t, read.Eof)

	del, err := h.client.Delete(ctx, &pb.DeleteRequest{Name: "notes.txt", Holder: "A"})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	del, err = h.client.Delete(ctx, &pb.DeleteRequest{Name: "notes.txt", Holder: "A"})
	require.NoError(t, err)
	assert.False(t, del.Deleted)
}

func TestReadNegativeOffset(t *testing.T) {
	h := startServer(t, "")

	_, err := h.client.ReadChunk(context.Background(), &pb.ReadChunkRequest{Name: "a", Offset: -1, MaxSize: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestChunkOverLimit(t *testing.T) {
	h := startServer(t, "")
	require.True(t, h.locks.Acquire("big.bin", "A"))

	// max chunk is 1 KiB, messages up to chunk + 64 KiB are accepted
	_, err := h.client.WriteChunk(context.Background(), &pb.WriteChunkRequest{
		Name: "big.bin", Data: make([]byte, 128<<10), Holder: "A",
	})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestAuth(t *testing.T) {
	h := startServer(t, "s3cret")

	_, err := h.client.List(context.Background(), &pb.ListRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), authHeader, bearerPrefix+"wrong")
	_, err = h.client.List(bad, &pb.ListRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	good := metadata.AppendToOutgoingContext(context.Background(), authHeader, bearerPrefix+"s3cret")
	_, err = h.client.List(good, &pb.ListRequest{})
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	h := startServer(t, "")
	ctx := context.Background()

	require.True(t, h.locks.Acquire("a.txt", "A"))
	_, err := h.client.CreateEmpty(ctx, &pb.CreateEmptyRequest{Name: "a.txt", Holder: "A"})
	require.NoError(t, err)

	st, err := h.client.Status(ctx, &pb.StatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), st.Files)
	assert.Equal(t, int32(1), st.Locks)
	assert.Equal(t, int64(1<<10), st.MaxChunkSize)
	require.Len(t, st.HeldLocks, 1)
	assert.Equal(t, "A", st.HeldLocks[0].Holder)
	assert.Zero(t, st.HeldLocks[0].RemainingMs, "locks without a ttl never expire")
}

func TestStatusRemainingTTL(t *testing.T) {
	h := startServerWith(t, lock.NewRegistry(lock.WithTTL(time.Minute)), "")
	require.True(t, h.locks.Acquire("a.txt", "A"))

	st, err := h.client.Status(context.Background(), &pb.StatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(60), st.LockTtlSeconds)
	require.Len(t, st.HeldLocks, 1)
	assert.Greater(t, st.HeldLocks[0].RemainingMs, int64(0))
	assert.LessOrEqual(t, st.HeldLocks[0].RemainingMs, int64(time.Minute/time.Millisecond))
}

func TestHistory(t *testing.T) {
	j, err := storage.OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	locks := lock.NewRegistry(lock.WithHook(j.Hook(zerolog.Nop())))
	h := startServerWith(t, locks, "", WithJournal(j))
	ctx := context.Background()

	_, err = h.client.Acquire(ctx, &pb.AcquireRequest{Name: "log.txt", Holder: "A"})
	require.NoError(t, err)
	_, err = h.client.CreateEmpty(ctx, &pb.CreateEmptyRequest{Name: "log.txt", Holder: "A"})
	require.NoError(t, err)
	_, err = h.client.Release(ctx, &pb.ReleaseRequest{Name: "log.txt", Holder: "A"})
	require.NoError(t, err)

	require.True(t, h.locks.Acquire("log.txt", "B"))

	// busy acquires and rejected releases change nothing and are not journaled
	_, err = h.client.Acquire(ctx, &pb.AcquireRequest{Name: "log.txt", Holder: "A"})
	require.NoError(t, err)
	_, err = h.client.Release(ctx, &pb.ReleaseRequest{Name: "log.txt", Holder: "A"})
	require.NoError(t, err)

	hist, err := h.client.History(ctx, &pb.HistoryRequest{Limit: 10})
	require.NoError(t, err)

	var got []string
	for _, e := range hist.Entries {
		got = append(got, e.Op+":"+e.Holder)
	}
	assert.Equal(t, []string{"acquire:B", "release:A", "create:A", "acquire:A"}, got)
}

func TestHistoryDisabled(t *testing.T) {
	h := startServer(t, "")

	_, err := h.client.History(context.Background(), &pb.HistoryRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestSweep(t *testing.T) {
	locks := lock.NewRegistry(lock.WithTTL(20 * time.Millisecond))
	store := storage.NewFileStoreFs(afero.NewMemMapFs(), locks)
	s := NewServer(locks, store)

	require.True(t, locks.Acquire("a", "A"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Sweep(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(locks.Locks()) == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSweepDisabledReturns(t *testing.T) {
	locks := lock.NewRegistry()
	s := NewServer(locks, storage.NewFileStoreFs(afero.NewMemMapFs(), locks))

	// returns without blocking when locks never expire
	s.Sweep(context.Background(), time.Millisecond)
}

func TestToGRPCError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{types.ErrNotFound, codes.NotFound},
		{types.ErrInvalidName, codes.InvalidArgument},
		{types.ErrInvalidOffset, codes.InvalidArgument},
		{types.ErrPermissionDenied, codes.PermissionDenied},
		{types.ErrLockConflict, codes.FailedPrecondition},
		{assert.AnError, codes.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(toGRPCError(tt.err)), tt.err.Error())
	}
	assert.NoError(t, toGRPCError(nil))
}
