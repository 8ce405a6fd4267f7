package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collects chunks the way the server appends them
type sink struct {
	data  bytes.Buffer
	calls int
}

func (s *sink) send(_ context.Context, chunk []byte) error {
	s.calls++
	s.data.Write(chunk)
	return nil
}

// serves reads from a fixed payload the way the store does
func fetcherFor(payload []byte, calls *int) Fetcher {
	return func(_ context.Context, offset, max int64) ([]byte, error) {
		*calls++
		if offset >= int64(len(payload)) {
			return nil, nil
		}
		end := offset + max
		if end > int64(len(payload)) {
			end = int64(len(payload))
		}
		return payload[offset:end], nil
	}
}

func TestSendChunkCounts(t *testing.T) {
	const chunk = 8
	cases := []struct {
		name   string
		size   int
		chunks int
	}{
		{"empty", 0, 0},
		{"one byte", 1, 1},
		{"exact chunk", chunk, 1},
		{"chunk plus one", chunk + 1, 2},
		{"three chunks", 3 * chunk, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0xab}, tc.size)
			s := &sink{}

			n, err := Send(context.Background(), bytes.NewReader(payload), int64(tc.size), Options{ChunkSize: chunk}, s.send)
			require.NoError(t, err)
			assert.Equal(t, int64(tc.size), n)
			assert.Equal(t, tc.chunks, s.calls)
			assert.Equal(t, string(payload), s.data.String())
		})
	}
}

// TestSendFiveBytesDefaultChunk tests a small payload against the reference chunk size
func TestSendFiveBytesDefaultChunk(t *testing.T) {
	s := &sink{}
	n, err := Send(context.Background(), bytes.NewReader([]byte("hello")), 5, Options{}, s.send)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, 1, s.calls)
}

func TestSendStopsOnSenderError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	send := func(_ context.Context, _ []byte) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	}

	n, err := Send(context.Background(), bytes.NewReader(make([]byte, 40)), 40, Options{ChunkSize: 10}, send)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(10), n, "only the first chunk was delivered")
	assert.Equal(t, 2, calls)
}

func TestSendSourceError(t *testing.T) {
	boom := errors.New("disk gone")
	src := io.MultiReader(bytes.NewReader([]byte("abc")), &failingReader{err: boom})

	s := &sink{}
	_, err := Send(context.Background(), src, 0, Options{ChunkSize: 10}, s.send)
	assert.ErrorIs(t, err, boom)
}

func TestSendCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &sink{}
	_, err := Send(ctx, bytes.NewReader([]byte("abc")), 3, Options{}, s.send)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.calls)
}

func TestSendProgress(t *testing.T) {
	var seen []int64
	opts := Options{ChunkSize: 4, Progress: func(done, total int64) {
		assert.Equal(t, int64(10), total)
		seen = append(seen, done)
	}}

	s := &sink{}
	_, err := Send(context.Background(), bytes.NewReader(make([]byte, 10)), 10, opts, s.send)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 8, 10}, seen)
}

func TestReceiveRoundTrip(t *testing.T) {
	const chunk = 8
	for _, size := range []int{0, 1, chunk, chunk + 1, 5*chunk + 3} {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i)
		}

		calls := 0
		var out bytes.Buffer
		n, err := Receive(context.Background(), int64(size), Options{ChunkSize: chunk}, fetcherFor(payload, &calls), &out)
		require.NoError(t, err)
		assert.Equal(t, int64(size), n)
		assert.Equal(t, string(payload), out.String())
		assert.Equal(t, (size+chunk-1)/chunk, calls, "one fetch per chunk, none past the total")
	}
}

func TestReceiveZeroTotalNoCalls(t *testing.T) {
	calls := 0
	n, err := Receive(context.Background(), 0, Options{}, fetcherFor([]byte("ignored"), &calls), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 0, calls)
}

// TestReceiveStopsAtEndMarker tests a file that shrank after its size was queried
func TestReceiveStopsAtEndMarker(t *testing.T) {
	calls := 0
	var out bytes.Buffer
	n, err := Receive(context.Background(), 100, Options{ChunkSize: 4}, fetcherFor([]byte("short"), &calls), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "short", out.String())
}

// TestReceiveStopsAtTotal tests a file that grew after its size was queried
func TestReceiveStopsAtTotal(t *testing.T) {
	calls := 0
	var out bytes.Buffer
	n, err := Receive(context.Background(), 4, Options{ChunkSize: 4}, fetcherFor([]byte("grown file"), &calls), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "grow", out.String())
	assert.Equal(t, 1, calls)
}

func TestReceiveFetchError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(context.Context, int64, int64) ([]byte, error) { return nil, boom }

	_, err := Receive(context.Background(), 10, Options{}, fetch, io.Discard)
	assert.ErrorIs(t, err, boom)
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }
