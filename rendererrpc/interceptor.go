package rendererrpc

import (
	"context"
	"time"

	"github.com/joeycumines/logiface"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor returns a server interceptor logging each call: at
// trace level on success, and at warning level on failure.
func LoggingInterceptor(logger *logiface.Logger[logiface.Event]) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warning().
				Str(`category`, categoryRPC).
				Str(`method`, info.FullMethod).
				Str(`code`, status.Code(err).String()).
				Dur(`duration`, time.Since(start)).
				Err(err).
				Log(`rpc failed`)
		} else {
			logger.Trace().
				Str(`category`, categoryRPC).
				Str(`method`, info.FullMethod).
				Dur(`duration`, time.Since(start)).
				Log(`rpc`)
		}
		return resp, err
	}
}
