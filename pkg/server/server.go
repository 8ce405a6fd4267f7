package server

import (
	"context"
	"time"

	pb "github.com/pixperk/lockbox/api/v1"
	"github.com/pixperk/lockbox/pkg/lock"
	"github.com/pixperk/lockbox/pkg/storage"
	"github.com/pixperk/lockbox/pkg/types"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultHistoryLimit = 50

type Server struct {
	pb.UnimplementedFileServiceServer
	locks   *lock.Registry
	store   *storage.FileStore
	journal *storage.Journal
	log     zerolog.Logger
}

type Option func(*Server)

// records file mutations and serves History; nil disables both.
// Lock events reach the journal through the registry, see Journal.Hook.
func WithJournal(j *storage.Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// wraps the lock registry and file store into a gRPC server
func NewServer(locks *lock.Registry, store *storage.FileStore, opts ...Option) *Server {
	s := &Server{
		locks: locks,
		store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) List(ctx context.Context, req *pb.ListRequest) (*pb.ListResponse, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &pb.ListResponse{Names: names}, nil
}

func (s *Server) Size(ctx context.Context, req *pb.SizeRequest) (*pb.SizeResponse, error) {
	return &pb.SizeResponse{Size: s.store.Size(req.Name)}, nil
}

func (s *Server) Acquire(ctx context.Context, req *pb.AcquireRequest) (*pb.AcquireResponse, error) {
	if req.Holder == "" {
		return nil, status.Error(codes.InvalidArgument, "holder required")
	}
	if err := storage.ValidateName(req.Name); err != nil {
		return nil, toGRPCError(err)
	}

	acquired := s.locks.Acquire(req.Name, req.Holder)
	return &pb.AcquireResponse{Acquired: acquired}, nil
}

func (s *Server) Release(ctx context.Context, req *pb.ReleaseRequest) (*pb.ReleaseResponse, error) {
	if req.Holder == "" {
		return nil, status.Error(codes.InvalidArgument, "holder required")
	}

	released := s.locks.Release(req.Name, req.Holder)
	return &pb.ReleaseResponse{Released: released}, nil
}

func (s *Server) CreateEmpty(ctx context.Context, req *pb.CreateEmptyRequest) (*pb.CreateEmptyResponse, error) {
	res, err := s.store.CreateEmpty(req.Name, req.Holder)
	if err != nil {
		return nil, toGRPCError(err)
	}
	if err := res.Err(); err != nil {
		return nil, toGRPCError(err)
	}

	s.record(types.OpCreate, req.Name, req.Holder)
	return &pb.CreateEmptyResponse{}, nil
}

func (s *Server) WriteChunk(ctx context.Context, req *pb.WriteChunkRequest) (*pb.WriteChunkResponse, error) {
	res, err := s.store.WriteChunk(req.Name, req.Data, req.Holder)
	if err != nil {
		return nil, toGRPCError(err)
	}
	if err := res.Err(); err != nil {
		return nil, toGRPCError(err)
	}
	return &pb.WriteChunkResponse{}, nil
}

func (s *Server) ReadChunk(ctx context.Context, req *pb.ReadChunkRequest) (*pb.ReadChunkResponse, error) {
	data, err := s.store.ReadChunk(req.Name, req.Offset, req.MaxSize)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &pb.ReadChunkResponse{Data: data, Eof: len(data) == 0}, nil
}

func (s *Server) Delete(ctx context.Context, req *pb.DeleteRequest) (*pb.DeleteResponse, error) {
	res, err := s.store.Delete(req.Name, req.Holder)
	if err != nil {
		return nil, toGRPCError(err)
	}

	switch res {
	case types.ResultOK:
		s.record(types.OpDelete, req.Name, req.Holder)
		return &pb.DeleteResponse{Deleted: true}, nil
	case types.ResultNotFound:
		return &pb.DeleteResponse{Deleted: false}, nil
	default:
		return nil, toGRPCError(res.Err())
	}
}

func (s *Server) Status(ctx context.Context, req *pb.StatusRequest) (*pb.StatusResponse, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, toGRPCError(err)
	}

	held := s.locks.Locks()
	resp := &pb.StatusResponse{
		Files:          int32(len(names)),
		Locks:          int32(len(held)),
		MaxChunkSize:   s.store.MaxChunkSize(),
		UptimeSeconds:  int64(s.locks.Uptime().Seconds()),
		LockTtlSeconds: int64(s.locks.TTL().Seconds()),
	}
	for _, l := range held {
		resp.HeldLocks = append(resp.HeldLocks, &pb.LockInfo{
			Name:        l.Name,
			Holder:      l.Holder,
			RemainingMs: s.locks.Remaining(l).Milliseconds(),
		})
	}
	return resp, nil
}

func (s *Server) History(ctx context.Context, req *pb.HistoryRequest) (*pb.HistoryResponse, error) {
	if s.journal == nil {
		return nil, status.Error(codes.FailedPrecondition, "journal disabled")
	}

	limit := int(req.Limit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	events, err := s.journal.Recent(limit)
	if err != nil {
		return nil, toGRPCError(err)
	}

	resp := &pb.HistoryResponse{Entries: make([]*pb.JournalEntry, 0, len(events))}
	for _, ev := range events {
		resp.Entries = append(resp.Entries, &pb.JournalEntry{
			Seq:      ev.Seq,
			Op:       string(ev.Op),
			Name:     ev.Name,
			Holder:   ev.Holder,
			UnixNano: ev.Time.UnixNano(),
		})
	}
	return resp, nil
}

// create and delete run while the caller holds the file's lock, so their
// entries land between that holder's acquire and release
// journal failures are logged, never returned
func (s *Server) record(op types.Op, name, holder string) {
	if s.journal == nil {
		return
	}
	_, err := s.journal.Append(types.Event{Op: op, Name: name, Holder: holder, Time: time.Now()})
	if err != nil {
		s.log.Warn().Err(err).Str("op", string(op)).Str("name", name).Msg("journal append failed")
	}
}

// Sweep drops expired locks every interval until ctx is done.
// It returns immediately when locks never expire.
func (s *Server) Sweep(ctx context.Context, interval time.Duration) {
	if s.locks.TTL() <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.locks.Sweep(); n > 0 {
				s.log.Info().Int("expired", n).Msg("swept expired locks")
			}
		case <-ctx.Done():
			return
		}
	}
}
