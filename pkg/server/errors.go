package server

import (
	"errors"

	"github.com/pixperk/lockbox/pkg/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// converts domain errors to gRPC status errors
func toGRPCError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, types.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, types.ErrInvalidName), errors.Is(err, types.ErrInvalidOffset):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, types.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, types.ErrLockConflict):
		return status.Error(codes.FailedPrecondition, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
