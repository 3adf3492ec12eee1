package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"backupauth/pkg/admission"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/middleware/auth"
	"backupauth/pkg/requestcontext"
)

// RequestTimeInterceptor pins one "now" for the whole call.
func RequestTimeInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		return next(requestcontext.WithTime(ctx, time.Now()), req)
	}
}

// AuthInterceptor authenticates the "authorization: Bearer <jwt>" metadata entry.
func AuthInterceptor(validator auth.JWTValidator, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		var header string
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}
		token, ok := auth.BearerToken(header)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization metadata")
		}
		authed, err := auth.Authenticate(ctx, validator, token)
		if err != nil {
			logger.WarnContext(ctx, "unauthenticated grpc call", "method", info.FullMethod, "error", err)
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}
		return next(authed, req)
	}
}

// ErrorInterceptor is the only place service errors become gRPC statuses. An
// admission refusal also sets the retry-after trailer.
func ErrorInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		resp, err := next(ctx, req)
		if err == nil {
			return resp, nil
		}
		if re, ok := admission.As(err); ok {
			if md := re.Metadata(); md != nil {
				if terr := grpc.SetTrailer(ctx, md); terr != nil {
					logger.WarnContext(ctx, "failed to set retry-after trailer", "error", terr)
				}
			}
			return nil, re.GRPCStatus().Err()
		}
		st := ToStatus(err)
		if st.Code() == codes.Internal {
			logger.ErrorContext(ctx, "grpc call failed", "method", info.FullMethod, "error", err)
		}
		return nil, st.Err()
	}
}

// ToStatus maps an error onto a gRPC status. Errors that already carry a status
// pass through; internal details never reach the client.
func ToStatus(err error) *status.Status {
	if re, ok := admission.As(err); ok {
		return re.GRPCStatus()
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		code := codeFor(domainErr.Code)
		if code == codes.Internal {
			return status.New(codes.Internal, "internal error")
		}
		return status.New(code, domainErr.Error())
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, "deadline exceeded")
	}
	if st, ok := status.FromError(err); ok {
		return st
	}
	return status.New(codes.Internal, "internal error")
}

func codeFor(code dErrors.Code) codes.Code {
	switch code {
	case dErrors.CodeNotFound:
		return codes.NotFound
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return codes.InvalidArgument
	case dErrors.CodeConflict:
		return codes.Aborted
	case dErrors.CodeUnauthorized:
		return codes.Unauthenticated
	case dErrors.CodeForbidden:
		return codes.PermissionDenied
	case dErrors.CodeTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
