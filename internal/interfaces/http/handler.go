package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/gainbase/internal/analytics"
	"github.com/jmanzanog/gainbase/internal/application"
	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/ledgerio"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata"
)

// PortfolioService defines the interface for portfolio operations
type PortfolioService interface {
	AddTransaction(ctx context.Context, req application.TransactionRequest) (*domain.Transaction, error)
	AddTransactionsBatch(ctx context.Context, requests []application.TransactionRequest) *application.AddTransactionsBatchResult
	UpdateTransaction(ctx context.Context, id string, req application.TransactionRequest) (*domain.Transaction, error)
	RemoveTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ImportCSV(ctx context.Context, r io.Reader) ([]domain.Transaction, error)
	ExportCSV(ctx context.Context, w io.Writer) error

	RefreshSnapshot(ctx context.Context) error
	Snapshot() domain.Snapshot

	Summary(ctx context.Context) (analytics.Summary, error)
	Allocation(ctx context.Context, dim analytics.Dimension) ([]analytics.AllocationSlice, error)
	Yearly(ctx context.Context, dim analytics.Dimension, ascending bool) ([]analytics.YearlyRecord, error)
	Projection(ctx context.Context, params application.ProjectionParams) (analytics.Projection, error)
	ProjectionSeries(ctx context.Context, params application.ProjectionParams) ([]analytics.ProjectionPoint, error)
	Holdings(ctx context.Context) ([]analytics.Holding, error)
	Holding(ctx context.Context, symbol string) (*application.HoldingDetail, error)
	Movers(ctx context.Context, limit int) ([]analytics.Holding, error)
	Insights(ctx context.Context) ([]analytics.Insight, error)
	Benchmark(ctx context.Context) ([]analytics.BenchmarkEntry, error)
}

type Handler struct {
	portfolioService PortfolioService
}

func NewHandler(portfolioService PortfolioService) *Handler {
	return &Handler{
		portfolioService: portfolioService,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TickersResponse struct {
	FetchedAt string          `json:"fetched_at,omitempty"`
	Tickers   []domain.Ticker `json:"tickers"`
}

type ImportResponse struct {
	Imported     int                  `json:"imported"`
	Transactions []domain.Transaction `json:"transactions"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidTransaction), errors.Is(err, ledgerio.ErrEmptyImport):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransactionNotFound), errors.Is(err, application.ErrSymbolNotHeld):
		return http.StatusNotFound
	case errors.Is(err, marketdata.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, msg string, err error, attrs ...any) {
	status := statusFor(err)
	args := append([]any{"error", err, "status", status}, attrs...)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), msg, args...)
	} else {
		slog.WarnContext(c.Request.Context(), msg, args...)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (h *Handler) AddTransaction(c *gin.Context) {
	var req application.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	txn, err := h.portfolioService.AddTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Failed to add transaction", err, "symbol", req.Symbol)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

func (h *Handler) AddTransactionsBatch(c *gin.Context) {
	var requests []application.TransactionRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid batch request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result := h.portfolioService.AddTransactionsBatch(c.Request.Context(), requests)

	status := http.StatusCreated
	switch {
	case len(result.Successful) == 0 && len(result.Failed) > 0:
		status = http.StatusBadRequest
	case len(result.Failed) > 0:
		status = http.StatusMultiStatus
	}

	c.JSON(status, result)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	txns, err := h.portfolioService.ListTransactions(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list transactions", err)
		return
	}

	c.JSON(http.StatusOK, txns)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id := c.Param("id")

	txn, err := h.portfolioService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get transaction", err, "transaction_id", id)
		return
	}

	c.JSON(http.StatusOK, txn)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	id := c.Param("id")

	var req application.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	txn, err := h.portfolioService.UpdateTransaction(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, "Failed to update transaction", err, "transaction_id", id)
		return
	}

	c.JSON(http.StatusOK, txn)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id := c.Param("id")

	if err := h.portfolioService.RemoveTransaction(c.Request.Context(), id); err != nil {
		respondError(c, "Failed to delete transaction", err, "transaction_id", id)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ImportTransactions(c *gin.Context) {
	txns, err := h.portfolioService.ImportCSV(c.Request.Context(), c.Request.Body)
	if err != nil {
		respondError(c, "Failed to import transactions", err)
		return
	}

	c.JSON(http.StatusCreated, ImportResponse{Imported: len(txns), Transactions: txns})
}

func (h *Handler) ExportTransactions(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.portfolioService.ExportCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, "Failed to export transactions", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) ListTickers(c *gin.Context) {
	c.JSON(http.StatusOK, tickersResponse(h.portfolioService.Snapshot()))
}

func (h *Handler) RefreshTickers(c *gin.Context) {
	if err := h.portfolioService.RefreshSnapshot(c.Request.Context()); err != nil {
		respondError(c, "Failed to refresh tickers", err)
		return
	}

	c.JSON(http.StatusOK, tickersResponse(h.portfolioService.Snapshot()))
}

func tickersResponse(snap domain.Snapshot) TickersResponse {
	resp := TickersResponse{Tickers: snap.Tickers()}
	if !snap.FetchedAt.IsZero() {
		resp.FetchedAt = snap.FetchedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
