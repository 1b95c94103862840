package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/ratesim/internal/compare"
	"github.com/rgehrsitz/ratesim/internal/domain"
)

// rateChangeRequest is the body of PUT /api/rate-changes and POST /api/impact/preview
type rateChangeRequest struct {
	States      []string         `json:"states"`
	RatingAreas []string         `json:"ratingAreas"`
	Edits       domain.RateEdits `json:"edits"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"plans":  len(s.svc.Plans()),
	})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.svc.Options(),
	})
}

func (s *Server) handleRates(c *gin.Context) {
	incomes, err := parseIncomes(c.QueryArray("income"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	table, err := s.svc.QueryRates(c.Request.Context(), domain.RateFilter{
		Ages:          c.QueryArray("age"),
		States:        c.QueryArray("state"),
		RatingAreas:   c.QueryArray("area"),
		MetalLevels:   metalLevels(c.QueryArray("metal")),
		CSRVariations: c.QueryArray("csr"),
		Incomes:       incomes,
	})
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    table,
		"count":   len(table.Rows),
	})
}

func (s *Server) handleGetRateChanges(c *gin.Context) {
	matrix, err := s.svc.GetRateChangeMatrix(c.Request.Context(), c.QueryArray("state"), c.QueryArray("area"))
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    matrix,
	})
}

func (s *Server) handlePutRateChanges(c *gin.Context) {
	var req rateChangeRequest
	if err := c.BindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.svc.SubmitRateChangeEdits(ctx, req.Edits, req.States, req.RatingAreas); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	matrix, err := s.svc.GetRateChangeMatrix(ctx, req.States, req.RatingAreas)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Rate changes saved",
		"data":    matrix,
	})
}

func (s *Server) handleImpact(c *gin.Context) {
	incomes, err := parseIncomes(c.QueryArray("income"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	set, err := s.compare.Compare(c.Request.Context(), compare.CompareOptions{
		States:      c.QueryArray("state"),
		RatingAreas: c.QueryArray("area"),
		MetalLevels: metalLevels(c.QueryArray("metal")),
		Incomes:     incomes,
	})
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    set,
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	var req rateChangeRequest
	if err := c.BindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	set, err := s.compare.Preview(c.Request.Context(), req.Edits, compare.CompareOptions{
		States:      req.States,
		RatingAreas: req.RatingAreas,
	})
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    set,
	})
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success":   false,
		"error":     err.Error(),
		"requestId": c.GetString(requestIDKey),
	})
}

// statusFor maps domain errors to client errors; everything else is a server error
func statusFor(err error) int {
	var invalid *domain.InvalidPercentageError
	switch {
	case errors.As(err, &invalid),
		errors.Is(err, domain.ErrUnknownMetalLevel),
		errors.Is(err, domain.ErrNoSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseIncomes(values []string) ([]decimal.Decimal, error) {
	incomes := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		income, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid income %q: %w", v, err)
		}
		incomes = append(incomes, income)
	}
	return incomes, nil
}

func metalLevels(values []string) []domain.MetalLevel {
	levels := make([]domain.MetalLevel, 0, len(values))
	for _, v := range values {
		levels = append(levels, domain.MetalLevel(v))
	}
	return levels
}
