package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/pixperk/lockbox/api/v1"
	"github.com/pixperk/lockbox/pkg/transfer"
	"github.com/pixperk/lockbox/pkg/workflow"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// headroom above the chunk size for names and framing
const messageOverhead = 64 << 10

// Client is one session against a lockbox server. Every lock and write call
// it makes carries the session's holder id.
type Client struct {
	addr   string
	holder string
	conn   *grpc.ClientConn
	client pb.FileServiceClient

	chunkSize   int
	authKey     string
	compression string
	dialOpts    []grpc.DialOption
	log         zerolog.Logger
}

type Option func(*Client)

// overrides the generated holder id
func WithHolder(holder string) Option {
	return func(c *Client) {
		c.holder = holder
	}
}

func WithAuthKey(key string) Option {
	return func(c *Client) {
		c.authKey = key
	}
}

// compresses every call with the named gRPC compressor, e.g. "zstd"
func WithCompression(name string) Option {
	return func(c *Client) {
		c.compression = name
	}
}

func WithChunkSize(n int) Option {
	return func(c *Client) {
		c.chunkSize = n
	}
}

func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOpts = append(c.dialOpts, opts...)
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func NewClient(addr string, opts ...Option) (*Client, error) {
	c := &Client{
		addr:      addr,
		holder:    uuid.NewString(),
		chunkSize: transfer.DefaultChunkSize,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	limit := c.chunkSize + messageOverhead
	callOpts := []grpc.CallOption{grpc.MaxCallRecvMsgSize(limit), grpc.MaxCallSendMsgSize(limit)}
	if c.compression != "" {
		callOpts = append(callOpts, grpc.UseCompressor(c.compression))
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(callOpts...),
	}
	if c.authKey != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(bearerToken(c.authKey)))
	}
	dialOpts = append(dialOpts, c.dialOpts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.client = pb.NewFileServiceClient(conn)
	c.log = c.log.With().Str("holder", c.holder).Logger()
	return c, nil
}

func (c *Client) Holder() string {
	return c.holder
}

func (c *Client) ChunkSize() int {
	return c.chunkSize
}

// Workflow returns an orchestrator running over this session.
func (c *Client) Workflow(opts ...workflow.Option) *workflow.Workflow {
	base := []workflow.Option{
		workflow.WithChunkSize(c.chunkSize),
		workflow.WithLogger(c.log),
	}
	return workflow.New(c, append(base, opts...)...)
}

func (c *Client) List(ctx context.Context) ([]string, error) {
	resp, err := c.client.List(ctx, &pb.ListRequest{})
	if err != nil {
		return nil, fmt.Errorf("list: %w", fromGRPCError(err))
	}
	return resp.Names, nil
}

// Size returns the file's length, or types.SizeNotFound when it does not exist.
func (c *Client) Size(ctx context.Context, name string) (int64, error) {
	resp, err := c.client.Size(ctx, &pb.SizeRequest{Name: name})
	if err != nil {
		return 0, fmt.Errorf("size: %w", fromGRPCError(err))
	}
	return resp.Size, nil
}

func (c *Client) Acquire(ctx context.Context, name string) (bool, error) {
	resp, err := c.client.Acquire(ctx, &pb.AcquireRequest{Name: name, Holder: c.holder})
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", fromGRPCError(err))
	}
	return resp.Acquired, nil
}

func (c *Client) Release(ctx context.Context, name string) (bool, error) {
	resp, err := c.client.Release(ctx, &pb.ReleaseRequest{Name: name, Holder: c.holder})
	if err != nil {
		return false, fmt.Errorf("release lock: %w", fromGRPCError(err))
	}
	return resp.Released, nil
}

func (c *Client) CreateEmpty(ctx context.Context, name string) error {
	_, err := c.client.CreateEmpty(ctx, &pb.CreateEmptyRequest{Name: name, Holder: c.holder})
	if err != nil {
		return fmt.Errorf("create empty: %w", fromGRPCError(err))
	}
	return nil
}

func (c *Client) WriteChunk(ctx context.Context, name string, data []byte) error {
	_, err := c.client.WriteChunk(ctx, &pb.WriteChunkRequest{Name: name, Data: data, Holder: c.holder})
	if err != nil {
		return fmt.Errorf("write chunk: %w", fromGRPCError(err))
	}
	return nil
}

// ReadChunk returns up to max bytes at offset; an empty result marks the end.
func (c *Client) ReadChunk(ctx context.Context, name string, offset, max int64) ([]byte, error) {
	resp, err := c.client.ReadChunk(ctx, &pb.ReadChunkRequest{Name: name, Offset: offset, MaxSize: max})
	if err != nil {
		return nil, fmt.Errorf("read chunk: %w", fromGRPCError(err))
	}
	if resp.Eof {
		return nil, nil
	}
	return resp.Data, nil
}

func (c *Client) Delete(ctx context.Context, name string) (bool, error) {
	resp, err := c.client.Delete(ctx, &pb.DeleteRequest{Name: name, Holder: c.holder})
	if err != nil {
		return false, fmt.Errorf("delete: %w", fromGRPCError(err))
	}
	return resp.Deleted, nil
}

func (c *Client) Status(ctx context.Context) (*pb.StatusResponse, error) {
	resp, err := c.client.Status(ctx, &pb.StatusRequest{})
	if err != nil {
		return nil, fmt.Errorf("status: %w", fromGRPCError(err))
	}
	return resp, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]*pb.JournalEntry, error) {
	resp, err := c.client.History(ctx, &pb.HistoryRequest{Limit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("history: %w", fromGRPCError(err))
	}
	return resp.Entries, nil
}

// Ping checks the server is reachable and the session is accepted.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := c.client.Status(ctx, &pb.StatusRequest{}, grpc.WaitForReady(true))
	if err != nil {
		return fmt.Errorf("ping %s: %w", c.addr, fromGRPCError(err))
	}
	return nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// attaches the shared key to every call
type bearerToken string

func (t bearerToken) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(t)}, nil
}

func (t bearerToken) RequireTransportSecurity() bool {
	return false
}
