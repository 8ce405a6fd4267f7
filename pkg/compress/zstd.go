// Package compress registers a zstd compressor for gRPC.
//
// Importing the package is enough for a server to accept zstd-compressed
// calls; clients opt in per call with grpc.UseCompressor(compress.Name).
// Chunks of file data dominate the traffic, so encoders and decoders are
// pooled rather than built per message.
package compress

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/grpc/encoding"
)

// Name is the grpc-encoding value of the compressor.
const Name = "zstd"

func init() {
	encoding.RegisterCompressor(newCompressor())
}

type compressor struct {
	encoders sync.Pool
	decoders sync.Pool
}

func newCompressor() *compressor {
	c := &compressor{}
	c.encoders.New = func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
		return &writer{Encoder: enc, pool: &c.encoders}
	}
	return c
}

func (c *compressor) Name() string {
	return Name
}

func (c *compressor) Compress(w io.Writer) (io.WriteCloser, error) {
	zw := c.encoders.Get().(*writer)
	zw.Encoder.Reset(w)
	return zw, nil
}

func (c *compressor) Decompress(r io.Reader) (io.Reader, error) {
	zr, ok := c.decoders.Get().(*reader)
	if !ok {
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return &reader{Decoder: dec, pool: &c.decoders}, nil
	}
	if err := zr.Decoder.Reset(r); err != nil {
		c.decoders.Put(zr)
		return nil, err
	}
	zr.done = false
	return zr, nil
}

// returns itself to the pool once closed
type writer struct {
	*zstd.Encoder
	pool *sync.Pool
}

func (w *writer) Close() error {
	defer w.pool.Put(w)
	return w.Encoder.Close()
}

// returns itself to the pool once the stream is drained
type reader struct {
	*zstd.Decoder
	pool *sync.Pool
	done bool
}

func (r *reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	n, err := r.Decoder.Read(p)
	if err == io.EOF {
		r.done = true
		r.pool.Put(r)
	}
	return n, err
}
