package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/bankrecon/internal/adapter/http/dto"
	"github.com/iho/bankrecon/internal/adapter/render"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/infrastructure/logger"
	"github.com/iho/bankrecon/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Reconcile(ctx context.Context, input usecase.ReconcileInput) (*domain.ReconciliationRun, error)
	ReconcileAccount(ctx context.Context, input usecase.ReconcileAccountInput) (*domain.ReconciliationRun, error)
	GetRun(ctx context.Context, id string) (*domain.ReconciliationRun, error)
	ListRuns(ctx context.Context, account string, limit int) ([]*domain.ReconciliationRun, error)
}

// ReconciliationHandler handles reconciliation HTTP requests.
type ReconciliationHandler struct {
	reconcileUC  ReconciliationService
	maxBodyBytes int64
	logger       zerolog.Logger
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconcileUC ReconciliationService, maxBodyBytes int64, logger zerolog.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconcileUC:  reconcileUC,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Reconcile runs a reconciliation over records supplied in the body.
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if status, err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, status, "invalid request body", err.Error())
		return
	}

	run, err := h.reconcileUC.Reconcile(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.fail(w, r, "failed to reconcile", err)
		return
	}

	writeJSON(w, http.StatusCreated, render.FromRun(run))
}

// ReconcileAccount reconciles a statement against the stored ledger of an account.
func (h *ReconciliationHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "missing account", "")
		return
	}

	var req dto.ReconcileAccountRequest
	if status, err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, status, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(account)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err.Error())
		return
	}

	run, err := h.reconcileUC.ReconcileAccount(r.Context(), input)
	if err != nil {
		h.fail(w, r, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusCreated, render.FromRun(run))
}

// Get retrieves a stored run by ID.
func (h *ReconciliationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing run ID", "")
		return
	}

	run, err := h.reconcileUC.GetRun(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to get run", err)
		return
	}

	writeJSON(w, http.StatusOK, render.FromRun(run))
}

// ListByAccount lists an account's most recent runs.
func (h *ReconciliationHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	limit := parseIntQuery(r, "limit", domain.DefaultRunLimit)

	runs, err := h.reconcileUC.ListRuns(r.Context(), account, limit)
	if err != nil {
		h.fail(w, r, "failed to list runs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRunsResponse{
		Runs:  render.HeadersFromRuns(runs),
		Total: len(runs),
	})
}

func (h *ReconciliationHandler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context(), h.logger)
		l.Error().Err(err).Str("path", r.URL.Path).Msg(message)
	}
	writeError(w, status, message, err.Error())
}
