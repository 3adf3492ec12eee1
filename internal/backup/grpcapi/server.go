// Package grpcapi exposes the backup credential flows over gRPC.
package grpcapi

import (
	"context"
	"encoding/base64"
	"log/slog"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"backupauth/internal/backup/handler"
	"backupauth/internal/backup/models"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/platform/httputil"
)

// Field names of the GetBackupAuthCredentials request and response structs.
const (
	FieldRedemptionStart = "redemptionStartSeconds"
	FieldRedemptionEnd   = "redemptionEndSeconds"
	FieldCredentials     = "credentials"
	FieldCredential      = "credential"
	FieldRedemptionTime  = "redemptionTime"
)

// Server adapts the backup service to BackupAuthServer. Errors are returned as
// domain errors and translated by ErrorInterceptor.
type Server struct {
	UnimplementedBackupAuthServer
	service handler.Service
	logger  *slog.Logger
}

func NewServer(service handler.Service, logger *slog.Logger) *Server {
	return &Server{service: service, logger: logger}
}

func (s *Server) SetBackupId(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	accountID, err := httputil.RequireAccountID(ctx, s.logger)
	if err != nil {
		return nil, err
	}
	request, err := s.service.ParseCredentialRequest(in.GetValue())
	if err != nil {
		return nil, err
	}
	if err := s.service.CommitBackupID(ctx, accountID, request); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) RedeemReceipt(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	accountID, err := httputil.RequireAccountID(ctx, s.logger)
	if err != nil {
		return nil, err
	}
	if len(in.GetValue()) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "receipt credential presentation is required")
	}
	if err := s.service.RedeemReceipt(ctx, accountID, in.GetValue()); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) GetBackupAuthCredentials(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	accountID, err := httputil.RequireAccountID(ctx, s.logger)
	if err != nil {
		return nil, err
	}
	start, err := epochSecondsField(in, FieldRedemptionStart)
	if err != nil {
		return nil, err
	}
	end, err := epochSecondsField(in, FieldRedemptionEnd)
	if err != nil {
		return nil, err
	}

	creds, err := s.service.GetBackupAuthCredentials(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}
	return credentialsStruct(creds)
}

func epochSecondsField(in *structpb.Struct, name string) (time.Time, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" is required")
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue < 0 || n.NumberValue != math.Trunc(n.NumberValue) {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" must be a non-negative integer")
	}
	return time.Unix(int64(n.NumberValue), 0).UTC(), nil
}

func credentialsStruct(creds []models.Credential) (*structpb.Struct, error) {
	list := make([]any, 0, len(creds))
	for _, c := range creds {
		list = append(list, map[string]any{
			FieldCredential:     base64.StdEncoding.EncodeToString(c.Credential),
			FieldRedemptionTime: float64(c.RedemptionTime.Unix()),
		})
	}
	out, err := structpb.NewStruct(map[string]any{FieldCredentials: list})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode credentials")
	}
	return out, nil
}
