package server

import (
	"bytes"
	"context"
	"encoding/json"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	grpcErrors "github.com/iho/bankrecon/internal/adapter/grpc/errors"
	"github.com/iho/bankrecon/internal/adapter/http/dto"
	"github.com/iho/bankrecon/internal/adapter/render"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/usecase"
)

// ReconciliationUseCase defines the behavior needed by ReconciliationServer.
type ReconciliationUseCase interface {
	Reconcile(ctx context.Context, input usecase.ReconcileInput) (*domain.ReconciliationRun, error)
	ReconcileAccount(ctx context.Context, input usecase.ReconcileAccountInput) (*domain.ReconciliationRun, error)
	GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error)
	ListRuns(ctx context.Context, account string, limit int) ([]*domain.ReconciliationRun, error)
}

// ReconciliationServer implements the gRPC ReconciliationService
type ReconciliationServer struct {
	UnimplementedReconciliationServiceServer
	reconcileUC ReconciliationUseCase
}

// NewReconciliationServer creates a new ReconciliationServer
func NewReconciliationServer(reconcileUC ReconciliationUseCase) *ReconciliationServer {
	return &ReconciliationServer{reconcileUC: reconcileUC}
}

type accountReconcileRequest struct {
	Account string `json:"account"`
	dto.ReconcileAccountRequest
}

type getRunRequest struct {
	ID string `json:"id"`
}

type listRunsRequest struct {
	Account string `json:"account"`
	Limit   int    `json:"limit"`
}

// Reconcile runs a reconciliation over records supplied in the request.
func (s *ReconciliationServer) Reconcile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.ReconcileRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	run, err := s.reconcileUC.Reconcile(ctx, req.ToUseCaseInput())
	if err != nil {
		return nil, grpcErrors.MapDomainError(err)
	}

	return encodeStruct(render.FromRun(run))
}

// ReconcileAccount reconciles a statement against the stored ledger of an account.
func (s *ReconciliationServer) ReconcileAccount(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req accountReconcileRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	input, err := req.ToUseCaseInput(req.Account)
	if err != nil {
		return nil, grpcErrors.MapDomainError(err)
	}

	run, err := s.reconcileUC.ReconcileAccount(ctx, input)
	if err != nil {
		return nil, grpcErrors.MapDomainError(err)
	}

	return encodeStruct(render.FromRun(run))
}

// GetRun returns a stored run.
func (s *ReconciliationServer) GetRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req getRunRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	run, err := s.reconcileUC.GetRun(ctx, req.ID)
	if err != nil {
		return nil, grpcErrors.MapDomainError(err)
	}

	return encodeStruct(render.FromRun(run))
}

// ListRuns returns an account's most recent runs.
func (s *ReconciliationServer) ListRuns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRunsRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	runs, err := s.reconcileUC.ListRuns(ctx, req.Account, req.Limit)
	if err != nil {
		return nil, grpcErrors.MapDomainError(err)
	}

	return encodeStruct(dto.ListRunsResponse{
		Runs:  render.HeadersFromRuns(runs),
		Total: len(runs),
	})
}

func decodeStruct(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}

	raw, err := in.MarshalJSON()
	if err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	return nil
}

func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}

	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}

	return out, nil
}
