package server

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/pixperk/lockbox/pkg/metrics"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// headroom above the largest chunk for names and framing
	messageOverhead = 64 << 10

	authHeader   = "authorization"
	bearerPrefix = "Bearer "
)

// AuthInterceptor rejects calls that do not carry the shared key.
// An empty key disables the check.
func AuthInterceptor(key string) grpc.UnaryServerInterceptor {
	want := []byte(key)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if len(want) == 0 {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		for _, v := range md.Get(authHeader) {
			got, ok := strings.CutPrefix(v, bearerPrefix)
			if ok && subtle.ConstantTimeCompare([]byte(got), want) == 1 {
				return handler(ctx, req)
			}
		}
		return nil, status.Error(codes.Unauthenticated, "invalid or missing auth key")
	}
}

// ObserveInterceptor logs every call and records its latency.
func ObserveInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		code := status.Code(err)
		method := info.FullMethod[strings.LastIndex(info.FullMethod, "/")+1:]
		metrics.RPCDuration.WithLabelValues(method, code.String()).Observe(elapsed.Seconds())

		ev := log.Debug()
		switch code {
		case codes.OK, codes.NotFound, codes.PermissionDenied:
		case codes.Unauthenticated, codes.InvalidArgument:
			ev = log.Warn()
		default:
			ev = log.Error()
		}
		ev.Str("method", method).Stringer("code", code).Dur("elapsed", elapsed).Err(err).Msg("rpc")
		return resp, err
	}
}

// ServerOptions returns the gRPC options for a server accepting chunks up to maxChunk bytes.
func ServerOptions(maxChunk int64, authKey string, log zerolog.Logger) []grpc.ServerOption {
	limit := int(maxChunk) + messageOverhead
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(limit),
		grpc.MaxSendMsgSize(limit),
		grpc.ChainUnaryInterceptor(
			ObserveInterceptor(log),
			AuthInterceptor(authKey),
		),
	}
}
