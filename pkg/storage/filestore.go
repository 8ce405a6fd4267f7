package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/pixperk/lockbox/pkg/lock"
	"github.com/pixperk/lockbox/pkg/metrics"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// default upper bound on bytes returned by one ReadChunk
const DefaultMaxChunkSize int64 = 1 << 20

// FileStore performs the byte-level operations on the flat file collection.
//
// Mutating calls consult the lock registry and are refused only when another
// holder owns the name; an unlocked name can be mutated by anyone, so callers
// must acquire before mutating. Reads never consult the registry: a read racing
// an upload on the same name can observe a partially written file.
//
// Writes go straight to the underlying filesystem with no buffering, journaling
// or fsync, so a crash mid-upload leaves a valid prefix of the payload behind.
type FileStore struct {
	fs       afero.Fs
	locks    *lock.Registry
	maxChunk int64
	log      zerolog.Logger
}

type Option func(*FileStore)

// caps the bytes returned by a single ReadChunk
func WithMaxChunkSize(n int64) Option {
	return func(s *FileStore) {
		if n > 0 {
			s.maxChunk = n
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *FileStore) {
		s.log = log
	}
}

// opens a store rooted at dir on the local disk, creating dir if needed
// every path is resolved through a BasePathFs so nothing outside dir is reachable
func NewFileStore(dir string, locks *lock.Registry, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return NewFileStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir), locks, opts...), nil
}

// builds a store over an arbitrary filesystem, the root of fs is the store root
func NewFileStoreFs(fsys afero.Fs, locks *lock.Registry, opts ...Option) *FileStore {
	s := &FileStore{
		fs:       fsys,
		locks:    locks,
		maxChunk: DefaultMaxChunkSize,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) MaxChunkSize() int64 {
	return s.maxChunk
}

// returns the names of all stored files, sorted
func (s *FileStore) List() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, "/")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list files: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// returns the byte length of name, or types.SizeNotFound if it does not exist
func (s *FileStore) Size(name string) int64 {
	if ValidateName(name) != nil {
		return types.SizeNotFound
	}
	info, err := s.fs.Stat(name)
	if err != nil || info.IsDir() {
		return types.SizeNotFound
	}
	return info.Size()
}

// creates name or truncates it to zero length
func (s *FileStore) CreateEmpty(name, holder string) (types.Result, error) {
	if err := ValidateName(name); err != nil {
		return types.ResultOK, err
	}
	if !s.locks.Permits(name, holder) {
		s.observe("create", types.ResultPermissionDenied)
		return types.ResultPermissionDenied, nil
	}

	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		metrics.FileOpsTotal.WithLabelValues("create", "error").Inc()
		return types.ResultOK, fmt.Errorf("create %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		metrics.FileOpsTotal.WithLabelValues("create", "error").Inc()
		return types.ResultOK, fmt.Errorf("create %s: %w", name, err)
	}

	s.observe("create", types.ResultOK)
	s.log.Debug().Str("name", name).Str("holder", holder).Msg("file truncated")
	return types.ResultOK, nil
}

// appends data to the end of name, creating it if missing
func (s *FileStore) WriteChunk(name string, data []byte, holder string) (types.Result, error) {
	if err := ValidateName(name); err != nil {
		return types.ResultOK, err
	}
	if !s.locks.Permits(name, holder) {
		s.observe("write", types.ResultPermissionDenied)
		return types.ResultPermissionDenied, nil
	}

	f, err := s.fs.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		metrics.FileOpsTotal.WithLabelValues("write", "error").Inc()
		return types.ResultOK, fmt.Errorf("open %s: %w", name, err)
	}
	n, err := f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	metrics.BytesWritten.Add(float64(n))
	if err != nil {
		metrics.FileOpsTotal.WithLabelValues("write", "error").Inc()
		return types.ResultOK, fmt.Errorf("append %s: %w", name, err)
	}

	s.observe("write", types.ResultOK)
	return types.ResultOK, nil
}

// returns up to maxSize bytes of name starting at offset
// a nil slice is the end marker: the offset is at or past the end, or the file does not exist
// maxSize is clamped to the store's max chunk size, non-positive means the max
func (s *FileStore) ReadChunk(name string, offset, maxSize int64) ([]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidOffset, offset)
	}
	if ValidateName(name) != nil {
		return nil, nil
	}
	if maxSize <= 0 || maxSize > s.maxChunk {
		maxSize = s.maxChunk
	}

	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.observe("read", types.ResultNotFound)
			return nil, nil
		}
		metrics.FileOpsTotal.WithLabelValues("read", "error").Inc()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		metrics.FileOpsTotal.WithLabelValues("read", "error").Inc()
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, nil
	}
	if offset >= info.Size() {
		s.observe("read", types.ResultOK)
		return nil, nil
	}
	if left := info.Size() - offset; left < maxSize {
		maxSize = left
	}

	buf := make([]byte, maxSize)
	n, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		metrics.FileOpsTotal.WithLabelValues("read", "error").Inc()
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	s.observe("read", types.ResultOK)
	metrics.BytesRead.Add(float64(n))
	if n == 0 {
		return nil, nil
	}
	return buf[:n], nil
}

// removes name
// returns ResultNotFound when there was nothing to remove, which is a report, not a failure
func (s *FileStore) Delete(name, holder string) (types.Result, error) {
	if err := ValidateName(name); err != nil {
		return types.ResultOK, err
	}
	if !s.locks.Permits(name, holder) {
		s.observe("delete", types.ResultPermissionDenied)
		return types.ResultPermissionDenied, nil
	}

	info, err := s.fs.Stat(name)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			metrics.FileOpsTotal.WithLabelValues("delete", "error").Inc()
			return types.ResultOK, fmt.Errorf("stat %s: %w", name, err)
		}
		s.observe("delete", types.ResultNotFound)
		return types.ResultNotFound, nil
	}

	if err := s.fs.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.observe("delete", types.ResultNotFound)
			return types.ResultNotFound, nil
		}
		metrics.FileOpsTotal.WithLabelValues("delete", "error").Inc()
		return types.ResultOK, fmt.Errorf("remove %s: %w", name, err)
	}

	s.observe("delete", types.ResultOK)
	s.log.Debug().Str("name", name).Str("holder", holder).Msg("file deleted")
	return types.ResultOK, nil
}

func (s *FileStore) observe(op string, r types.Result) {
	metrics.FileOpsTotal.WithLabelValues(op, r.String()).Inc()
}
