// Package workflow composes locking, storage calls and chunked transfer into
// upload, download and delete.
//
// Upload and delete acquire the file's lock first and release it exactly once
// on every path that follows a successful acquire, whatever the outcome. A
// busy lock ends the workflow with types.ErrLockConflict before any file call.
// Download takes no lock: it can race an upload of the same name and observe
// a file that is still growing.
package workflow

import (
	"context"
	"fmt"
	"io"

	"github.com/pixperk/lockbox/pkg/transfer"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/rs/zerolog"
)

// Remote is the file service as seen by one client session.
// The session's holder identity is implicit in every lock-related call.
type Remote interface {
	Size(ctx context.Context, name string) (int64, error)
	Acquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) (bool, error)
	CreateEmpty(ctx context.Context, name string) error
	WriteChunk(ctx context.Context, name string, data []byte) error
	ReadChunk(ctx context.Context, name string, offset, max int64) ([]byte, error)
	Delete(ctx context.Context, name string) (bool, error)
}

type Workflow struct {
	remote  Remote
	opts    transfer.Options
	log     zerolog.Logger
	observe Observer
}

type Option func(*Workflow)

func WithChunkSize(n int) Option {
	return func(w *Workflow) {
		w.opts.ChunkSize = n
	}
}

func WithProgress(fn transfer.ProgressFunc) Option {
	return func(w *Workflow) {
		w.opts.Progress = fn
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(w *Workflow) {
		w.log = log
	}
}

func WithObserver(fn Observer) Option {
	return func(w *Workflow) {
		w.observe = fn
	}
}

func New(remote Remote, opts ...Option) *Workflow {
	w := &Workflow{
		remote: remote,
		opts:   transfer.Options{ChunkSize: transfer.DefaultChunkSize},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) enter(op Operation, name string, s State) {
	w.log.Debug().Str("op", string(op)).Str("name", name).Stringer("state", s).Msg("workflow state")
	if w.observe != nil {
		w.observe(op, name, s)
	}
}

// Upload replaces name with the contents of src.
// size is the expected length of src and only feeds progress reporting.
func (w *Workflow) Upload(ctx context.Context, name string, src io.Reader, size int64) (n int64, err error) {
	w.enter(OpUpload, name, StateLockRequested)
	acquired, err := w.remote.Acquire(ctx, name)
	if err != nil {
		w.enter(OpUpload, name, StateFailed)
		return 0, fmt.Errorf("acquire %s: %w", name, err)
	}
	if !acquired {
		w.enter(OpUpload, name, StateBusy)
		return 0, fmt.Errorf("upload %s: %w", name, types.ErrLockConflict)
	}
	w.enter(OpUpload, name, StateLocked)
	defer w.release(ctx, OpUpload, name, &err)

	w.enter(OpUpload, name, StateCreating)
	if err := w.remote.CreateEmpty(ctx, name); err != nil {
		w.enter(OpUpload, name, StateFailed)
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	w.enter(OpUpload, name, StateWriting)
	n, err = transfer.Send(ctx, src, size, w.opts, func(ctx context.Context, chunk []byte) error {
		return w.remote.WriteChunk(ctx, name, chunk)
	})
	if err != nil {
		w.enter(OpUpload, name, StateFailed)
		return n, fmt.Errorf("upload %s: %w", name, err)
	}

	w.enter(OpUpload, name, StateDone)
	w.log.Info().Str("name", name).Int64("bytes", n).Msg("upload complete")
	return n, nil
}

// Download writes the contents of name to dst.
// It returns types.ErrNotFound without any further call when name does not exist.
func (w *Workflow) Download(ctx context.Context, name string, dst io.Writer) (int64, error) {
	size, err := w.remote.Size(ctx, name)
	if err != nil {
		w.enter(OpDownload, name, StateFailed)
		return 0, fmt.Errorf("size %s: %w", name, err)
	}
	if size == types.SizeNotFound {
		w.enter(OpDownload, name, StateFailed)
		return 0, fmt.Errorf("download %s: %w", name, types.ErrNotFound)
	}

	w.enter(OpDownload, name, StateReading)
	n, err := transfer.Receive(ctx, size, w.opts, func(ctx context.Context, offset, max int64) ([]byte, error) {
		return w.remote.ReadChunk(ctx, name, offset, max)
	}, dst)
	if err != nil {
		w.enter(OpDownload, name, StateFailed)
		return n, fmt.Errorf("download %s: %w", name, err)
	}
	if n != size {
		// unsynchronized read, the file changed while we were reading it
		w.log.Warn().Str("name", name).Int64("expected", size).Int64("received", n).Msg("file changed during download")
	}

	w.enter(OpDownload, name, StateDone)
	w.log.Info().Str("name", name).Int64("bytes", n).Msg("download complete")
	return n, nil
}

// Delete removes name. It returns types.ErrNotFound when there was nothing to delete.
func (w *Workflow) Delete(ctx context.Context, name string) (err error) {
	w.enter(OpDelete, name, StateLockRequested)
	acquired, err := w.remote.Acquire(ctx, name)
	if err != nil {
		w.enter(OpDelete, name, StateFailed)
		return fmt.Errorf("acquire %s: %w", name, err)
	}
	if !acquired {
		w.enter(OpDelete, name, StateBusy)
		return fmt.Errorf("delete %s: %w", name, types.ErrLockConflict)
	}
	w.enter(OpDelete, name, StateLocked)
	defer w.release(ctx, OpDelete, name, &err)

	w.enter(OpDelete, name, StateDeleting)
	deleted, err := w.remote.Delete(ctx, name)
	if err != nil {
		w.enter(OpDelete, name, StateFailed)
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if !deleted {
		w.enter(OpDelete, name, StateFailed)
		return fmt.Errorf("delete %s: %w", name, types.ErrNotFound)
	}

	w.enter(OpDelete, name, StateDone)
	w.log.Info().Str("name", name).Msg("file deleted")
	return nil
}

// releases the lock taken by op; runs even when ctx is already cancelled
// a release failure is reported only if the workflow itself succeeded
func (w *Workflow) release(ctx context.Context, op Operation, name string, errp *error) {
	released, err := w.remote.Release(context.WithoutCancel(ctx), name)
	switch {
	case err != nil:
		w.log.Warn().Err(err).Str("op", string(op)).Str("name", name).Msg("release failed")
		if *errp == nil {
			*errp = fmt.Errorf("release %s: %w", name, err)
		}
	case !released:
		w.log.Warn().Str("op", string(op)).Str("name", name).Msg("lock was no longer held at release")
	}
	w.enter(op, name, StateUnlocked)
}
