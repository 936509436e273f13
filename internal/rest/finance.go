package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"garmentFactory/domain"

	"github.com/labstack/echo/v4"
)

type FinanceService interface {
	KPIs(ctx context.Context) (domain.FinanceKPIs, error)
	Summary(ctx context.Context) (domain.FinanceSummary, error)
	Monthly(ctx context.Context, year int) (domain.FinanceMonthly, error)
	Report(ctx context.Context, year int) ([]byte, error)
}

type FinanceHandler struct {
	financeService FinanceService
	timeout        time.Duration
}

func NewFinanceHandler(financeService FinanceService, timeout time.Duration) *FinanceHandler {
	return &FinanceHandler{
		financeService: financeService,
		timeout:        timeout,
	}
}

// queryYear reads ?year=, zero when absent.
func queryYear(c echo.Context) (int, error) {
	raw := c.QueryParam("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		return 0, fmt.Errorf("%w: invalid year %q", domain.ErrValidation, raw)
	}
	return year, nil
}

func (h *FinanceHandler) GetKPIs(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	kpis, err := h.financeService.KPIs(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{"kpis": kpis})
}

func (h *FinanceHandler) GetSummary(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	summary, err := h.financeService.Summary(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{"summary": summary})
}

func (h *FinanceHandler) GetMonthly(c echo.Context) error {
	year, err := queryYear(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	monthly, err := h.financeService.Monthly(ctx, year)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{"monthly": monthly})
}

func (h *FinanceHandler) GetReport(c echo.Context) error {
	year, err := queryYear(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	pdf, err := h.financeService.Report(ctx, year)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="finance-report.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
