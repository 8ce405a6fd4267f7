// Package transfer moves byte streams in bounded chunks.
//
// It knows nothing about locks or storage: Send splits a source into
// fixed-size chunks and hands them, in order, to a Sender; Receive pulls
// chunks at increasing offsets from a Fetcher until the expected size is
// reached or the fetcher reports the end. Both loops issue one call at a
// time, so chunks are applied in exactly the order they were produced.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the reference transfer granularity.
const DefaultChunkSize = 1 << 20

// Sender delivers one chunk. The slice is reused for the next chunk, so a
// Sender must not retain it after returning.
type Sender func(ctx context.Context, chunk []byte) error

// Fetcher returns up to max bytes at offset. An empty result is the end marker.
type Fetcher func(ctx context.Context, offset, max int64) ([]byte, error)

// ProgressFunc observes bytes moved so far against the expected total.
// total is zero or negative when the size is unknown.
type ProgressFunc func(done, total int64)

type Options struct {
	ChunkSize int
	Progress  ProgressFunc
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

func (o Options) report(done, total int64) {
	if o.Progress != nil {
		o.Progress(done, total)
	}
}

// Send reads src until it is exhausted and sends every chunk in order.
// total only feeds progress reporting. It returns the number of bytes sent;
// on error the chunks sent before it stay delivered.
func Send(ctx context.Context, src io.Reader, total int64, opts Options, send Sender) (int64, error) {
	buf := make([]byte, opts.chunkSize())

	var sent int64
	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if serr := send(ctx, buf[:n]); serr != nil {
				return sent, fmt.Errorf("send chunk at offset %d: %w", sent, serr)
			}
			sent += int64(n)
			opts.report(sent, total)
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return sent, nil
		default:
			return sent, fmt.Errorf("read source: %w", err)
		}
	}
}

// Receive fetches chunks starting at offset zero and writes them to dst
// until total bytes have arrived or the fetcher returns the end marker.
// A total of zero performs no fetch at all. It returns the bytes written,
// which is less than total when the remote file shrank mid-transfer.
func Receive(ctx context.Context, total int64, opts Options, fetch Fetcher, dst io.Writer) (int64, error) {
	max := int64(opts.chunkSize())

	var offset int64
	for offset < total {
		if err := ctx.Err(); err != nil {
			return offset, err
		}

		chunk, err := fetch(ctx, offset, max)
		if err != nil {
			return offset, fmt.Errorf("fetch chunk at offset %d: %w", offset, err)
		}
		if len(chunk) == 0 {
			break
		}

		if _, err := dst.Write(chunk); err != nil {
			return offset, fmt.Errorf("write chunk at offset %d: %w", offset, err)
		}
		offset += int64(len(chunk))
		opts.report(offset, total)
	}
	return offset, nil
}
