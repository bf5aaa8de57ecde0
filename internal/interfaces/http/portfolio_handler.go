package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/gainbase/internal/analytics"
	"github.com/jmanzanog/gainbase/internal/application"
)

const defaultProjectionYears = 10

func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.portfolioService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to compute summary", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetAllocation(c *gin.Context) {
	dim, err := analytics.ParseDimension(c.Query("dimension"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	slices, err := h.portfolioService.Allocation(c.Request.Context(), dim)
	if err != nil {
		respondError(c, "Failed to compute allocation", err, "dimension", dim)
		return
	}

	c.JSON(http.StatusOK, slices)
}

func (h *Handler) GetYearly(c *gin.Context) {
	dim, err := analytics.ParseDimension(c.Query("dimension"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var ascending bool
	switch strings.ToLower(c.DefaultQuery("order", "desc")) {
	case "desc":
	case "asc":
		ascending = true
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid order %q, expected asc or desc", c.Query("order"))})
		return
	}

	records, err := h.portfolioService.Yearly(c.Request.Context(), dim, ascending)
	if err != nil {
		respondError(c, "Failed to compute yearly analysis", err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetProjection(c *gin.Context) {
	params, err := projectionParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	projection, err := h.portfolioService.Projection(c.Request.Context(), params)
	if err != nil {
		respondError(c, "Failed to compute projection", err)
		return
	}

	c.JSON(http.StatusOK, projection)
}

func (h *Handler) GetProjectionSeries(c *gin.Context) {
	params, err := projectionParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	series, err := h.portfolioService.ProjectionSeries(c.Request.Context(), params)
	if err != nil {
		respondError(c, "Failed to compute projection series", err)
		return
	}

	c.JSON(http.StatusOK, series)
}

// projectionParams reads years, rate and monthly. rate is a decimal
// fraction (0.12 for 12%); omitted values use the portfolio defaults.
func projectionParams(c *gin.Context) (application.ProjectionParams, error) {
	params := application.ProjectionParams{Years: defaultProjectionYears}

	if v := c.Query("years"); v != "" {
		years, err := strconv.Atoi(v)
		if err != nil || years < 0 || years > analytics.MaxProjectionYears {
			return params, fmt.Errorf("invalid years %q, expected 0-%d", v, analytics.MaxProjectionYears)
		}
		params.Years = years
	}

	rate, err := optionalFloat(c, "rate")
	if err != nil {
		return params, err
	}
	params.Rate = rate

	monthly, err := optionalFloat(c, "monthly")
	if err != nil {
		return params, err
	}
	if monthly != nil && *monthly < 0 {
		return params, fmt.Errorf("invalid monthly %q, must not be negative", c.Query("monthly"))
	}
	params.Monthly = monthly

	return params, nil
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, v)
	}
	return &f, nil
}

func (h *Handler) ListHoldings(c *gin.Context) {
	holdings, err := h.portfolioService.Holdings(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to compute holdings", err)
		return
	}

	c.JSON(http.StatusOK, holdings)
}

func (h *Handler) GetHolding(c *gin.Context) {
	symbol := c.Param("symbol")

	detail, err := h.portfolioService.Holding(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, "Failed to get holding", err, "symbol", symbol)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) GetMovers(c *gin.Context) {
	limit := analytics.DefaultMoversLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid limit %q", v)})
			return
		}
		limit = n
	}

	movers, err := h.portfolioService.Movers(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "Failed to compute movers", err)
		return
	}

	c.JSON(http.StatusOK, movers)
}

func (h *Handler) GetInsights(c *gin.Context) {
	insights, err := h.portfolioService.Insights(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to compute insights", err)
		return
	}

	c.JSON(http.StatusOK, insights)
}

func (h *Handler) GetBenchmark(c *gin.Context) {
	entries, err := h.portfolioService.Benchmark(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to compute benchmark", err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
