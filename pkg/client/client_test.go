package client_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pixperk/lockbox/pkg/client"
	"github.com/pixperk/lockbox/pkg/compress"
	"github.com/pixperk/lockbox/pkg/storage"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUploadThenDownload tests one client uploading and another reading it back
func TestUploadThenDownload(t *testing.T) {
	ts := startServer(t, "")
	a := ts.connect(t, client.WithChunkSize(4))
	b := ts.connect(t, client.WithChunkSize(4))
	ctx := context.Background()

	payload := []byte("id,total\n1,42\n2,17\n")
	n, err := a.Workflow().Upload(ctx, "report.csv", bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	names, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.csv"}, names)

	var out bytes.Buffer
	_, err = b.Workflow().Download(ctx, "report.csv", &out)
	require.NoError(t, err)
	assert.Equal(t, payload, out.Bytes())

	assert.Empty(t, ts.locks.Locks())
}

// TestUploadWhileLocked tests that a held lock turns an upload away untouched
func TestUploadWhileLocked(t *testing.T) {
	ts := startServer(t, "")
	a := ts.connect(t)
	b := ts.connect(t)
	ctx := context.Background()

	_, err := b.Workflow().Upload(ctx, "report.csv", bytes.NewReader([]byte("v1")), 2)
	require.NoError(t, err)

	held, err := b.Lock(ctx, "report.csv")
	require.NoError(t, err)

	_, err = a.Workflow().Upload(ctx, "report.csv", bytes.NewReader([]byte("version two")), 11)
	assert.ErrorIs(t, err, types.ErrLockConflict)

	size, err := a.Size(ctx, "report.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	require.NoError(t, held.Release(ctx))

	_, err = a.Workflow().Upload(ctx, "report.csv", bytes.NewReader([]byte("version two")), 11)
	assert.NoError(t, err)
}

func TestSizeMissing(t *testing.T) {
	ts := startServer(t, "")
	c := ts.connect(t)

	size, err := c.Size(context.Background(), "missing.bin")
	require.NoError(t, err)
	assert.Equal(t, types.SizeNotFound, size)

	var out bytes.Buffer
	_, err = c.Workflow().Download(context.Background(), "missing.bin", &out)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteWorkflow(t *testing.T) {
	ts := startServer(t, "")
	c := ts.connect(t)
	ctx := context.Background()

	_, err := c.Workflow().Upload(ctx, "old.log", bytes.NewReader([]byte("x")), 1)
	require.NoError(t, err)

	require.NoError(t, c.Workflow().Delete(ctx, "old.log"))
	assert.ErrorIs(t, c.Workflow().Delete(ctx, "old.log"), types.ErrNotFound)

	names, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestErrorMapping(t *testing.T) {
	ts := startServer(t, "")
	c := ts.connect(t)
	ctx := context.Background()
	require.True(t, ts.locks.Acquire("locked.txt", "someone-else"))

	err := c.CreateEmpty(ctx, "locked.txt")
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	err = c.WriteChunk(ctx, "locked.txt", []byte("x"))
	assert.ErrorIs(t, err, types.ErrPermissionDenied)

	_, err = c.Acquire(ctx, "a/b")
	assert.ErrorIs(t, err, types.ErrInvalidName)

	_, err = c.ReadChunk(ctx, "locked.txt", -5, 10)
	assert.ErrorIs(t, err, types.ErrInvalidOffset)
}

func TestLockHelper(t *testing.T) {
	ts := startServer(t, "")
	a := ts.connect(t, client.WithHolder("alice"))
	b := ts.connect(t, client.WithHolder("bob"))
	ctx := context.Background()

	l, err := a.Lock(ctx, "shared.txt")
	require.NoError(t, err)
	assert.Equal(t, "shared.txt", l.Name())

	holder, ok := ts.locks.Holder("shared.txt")
	require.True(t, ok)
	assert.Equal(t, "alice", holder)

	_, err = b.Lock(ctx, "shared.txt")
	assert.ErrorIs(t, err, types.ErrLockConflict)

	require.NoError(t, l.Release(ctx))
	assert.Error(t, l.Release(ctx), "second release finds no lock")
}

func TestHolderIsUnique(t *testing.T) {
	ts := startServer(t, "")
	a := ts.connect(t)
	b := ts.connect(t)

	assert.NotEmpty(t, a.Holder())
	assert.NotEqual(t, a.Holder(), b.Holder())
}

func TestZstdCompression(t *testing.T) {
	ts := startServer(t, "")
	c := ts.connect(t, client.WithCompression(compress.Name), client.WithChunkSize(1<<10))
	ctx := context.Background()

	payload := bytes.Repeat([]byte("compressible "), 1000)
	_, err := c.Workflow().Upload(ctx, "big.txt", bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = c.Workflow().Download(ctx, "big.txt", &out)
	require.NoError(t, err)
	assert.Equal(t, payload, out.Bytes())
}

func TestAuthKey(t *testing.T) {
	ts := startServer(t, "s3cret")
	ctx := context.Background()

	_, err := ts.connect(t).List(ctx)
	assert.ErrorIs(t, err, types.ErrUnauthenticated)

	_, err = ts.connect(t, client.WithAuthKey("nope")).List(ctx)
	assert.ErrorIs(t, err, types.ErrUnauthenticated)

	_, err = ts.connect(t, client.WithAuthKey("s3cret")).List(ctx)
	assert.NoError(t, err)
}

func TestTransportFailure(t *testing.T) {
	ts := startServer(t, "")
	c := ts.connect(t)
	ts.grpc.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := c.Workflow().Upload(ctx, "x.txt", bytes.NewReader([]byte("x")), 1)
	assert.ErrorIs(t, err, types.ErrTransport)
}

func TestStatusAndPing(t *testing.T) {
	ts := startServer(t, "")
	c := ts.connect(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx, time.Second))

	_, err := c.Lock(ctx, "a.txt")
	require.NoError(t, err)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), st.Locks)
	assert.Equal(t, storage.DefaultMaxChunkSize, st.MaxChunkSize)
}

// TestChunkLargerThanServerLimit tests a client configured above the server's chunk size
func TestChunkLargerThanServerLimit(t *testing.T) {
	ts := startServer(t, "")
	c := ts.connect(t, client.WithChunkSize(2<<20))
	ctx := context.Background()

	payload := make([]byte, 2<<20)
	_, err := c.Workflow().Upload(ctx, "big.bin", bytes.NewReader(payload), int64(len(payload)))
	assert.ErrorIs(t, err, types.ErrChunkTooLarge)
	assert.NotErrorIs(t, err, types.ErrTransport)

	_, held := ts.locks.Holder("big.bin")
	assert.False(t, held, "the lock is released after the rejected chunk")
}
