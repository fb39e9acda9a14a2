package api

import (
	"net/http"

	"finance-tracker-backend/internal/cache"
	"finance-tracker-backend/internal/export"
	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type budgetRequest struct {
	Category string        `json:"category"`
	Amount   float64       `json:"amount"`
	Period   models.Period `json:"period"`
}

func (s *Server) listBudgets(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	var budgets []*models.Budget
	if s.cache.Get(ctx, cache.BudgetsKey(uid), &budgets) {
		c.JSON(http.StatusOK, budgets)
		return
	}

	budgets, err := s.ledger.ListBudgets(ctx, uid)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.Set(ctx, cache.BudgetsKey(uid), budgets, cache.BudgetsTTL)
	c.JSON(http.StatusOK, budgets)
}

func (s *Server) getBudget(c *gin.Context) {
	b, err := s.ledger.GetBudget(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) budgetStatus(c *gin.Context) {
	statuses, err := s.ledger.BudgetStatuses(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (s *Server) createBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := s.ledger.CreateBudget(c.Request.Context(), userID(c), models.Budget{
		Category: req.Category,
		Amount:   req.Amount,
		Period:   req.Period,
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusCreated, b)
}

func (s *Server) updateBudget(c *gin.Context) {
	var p ledger.BudgetPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}

	b, err := s.ledger.UpdateBudget(c.Request.Context(), userID(c), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, b)
}

func (s *Server) deleteBudget(c *gin.Context) {
	if err := s.ledger.DeleteBudget(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}

func (s *Server) exportBudgets(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	budgets, err := s.ledger.ListBudgets(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", `attachment; filename="`+format.Filename("budgets")+`"`)
	c.Status(http.StatusOK)
	if err := export.WriteBudgets(c.Writer, format, budgets); err != nil {
		c.Error(err)
	}
}
