package client

import (
	"fmt"
	"strings"

	"github.com/pixperk/lockbox/pkg/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// converts gRPC status errors back to domain errors
func fromGRPCError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %w", types.ErrTransport, err)
	}

	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", types.ErrNotFound, st.Message())

	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", types.ErrPermissionDenied, st.Message())

	case codes.InvalidArgument:
		if strings.Contains(st.Message(), types.ErrInvalidOffset.Error()) {
			return fmt.Errorf("%w: %s", types.ErrInvalidOffset, st.Message())
		}
		return fmt.Errorf("%w: %s", types.ErrInvalidName, st.Message())

	case codes.FailedPrecondition:
		if strings.Contains(st.Message(), types.ErrLockConflict.Error()) {
			return fmt.Errorf("%w: %s", types.ErrLockConflict, st.Message())
		}
		return err

	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", types.ErrUnauthenticated, st.Message())

	// the client's chunk size exceeds what the server accepts
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", types.ErrChunkTooLarge, st.Message())

	// never retried, surfaced to the caller as is
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", types.ErrTransport, st.Message())

	default:
		return err
	}
}
