package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"finance-tracker-backend/internal/cache"
	"finance-tracker-backend/internal/export"
	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/summary"

	"github.com/gin-gonic/gin"
)

type transactionRequest struct {
	AccountID   string           `json:"accountId"`
	Amount      float64          `json:"amount"`
	Type        models.Direction `json:"type"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        *flexTime        `json:"date"`
	Rating      *float64         `json:"rating"`
}

type transactionPatchRequest struct {
	AccountID   *string           `json:"accountId"`
	Amount      *float64          `json:"amount"`
	Type        *models.Direction `json:"type"`
	Category    *string           `json:"category"`
	Description *string           `json:"description"`
	Date        *flexTime         `json:"date"`
	Rating      *float64          `json:"rating"`
}

type ratingRequest struct {
	Rating *float64 `json:"rating"`
}

func (s *Server) listTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	f, err := transactionFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	cacheable := unfiltered(f)

	var txns []*models.Transaction
	if cacheable && s.cache.Get(ctx, cache.TransactionsKey(uid), &txns) {
		c.JSON(http.StatusOK, txns)
		return
	}

	txns, err = s.ledger.ListTransactions(ctx, uid, f)
	if err != nil {
		fail(c, err)
		return
	}
	if cacheable {
		s.cache.Set(ctx, cache.TransactionsKey(uid), txns, cache.TransactionsTTL)
	}
	c.JSON(http.StatusOK, txns)
}

func (s *Server) getTransaction(c *gin.Context) {
	t, err := s.ledger.GetTransaction(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.ledger.Categories(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// getSummary recomputes totals on every request; it is never cached.
func (s *Server) getSummary(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	f, err := transactionFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	txns, err := s.ledger.ListTransactions(ctx, uid, f)
	if err != nil {
		fail(c, err)
		return
	}
	accounts, err := s.ledger.ListAccounts(ctx, uid)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary.Compute(txns, accounts))
}

func (s *Server) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := s.ledger.CreateTransaction(c.Request.Context(), userID(c), ledger.NewTransaction{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date.ptr(),
		Rating:      req.Rating,
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTransaction(c *gin.Context) {
	var req transactionPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := s.ledger.UpdateTransaction(c.Request.Context(), userID(c), c.Param("id"), ledger.TransactionPatch{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date.ptr(),
		Rating:      req.Rating,
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, t)
}

func (s *Server) setRating(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Rating == nil {
		fail(c, models.Invalid("rating", "is required"))
		return
	}

	t, err := s.ledger.SetRating(c.Request.Context(), userID(c), c.Param("id"), *req.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	if err := s.ledger.DeleteTransaction(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

func (s *Server) exportTransactions(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}
	txns, err := s.ledger.ListTransactions(c.Request.Context(), userID(c), models.TransactionFilter{})
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", `attachment; filename="`+format.Filename("transactions")+`"`)
	c.Status(http.StatusOK)
	if err := export.WriteTransactions(c.Writer, format, txns); err != nil {
		c.Error(err)
	}
}

func (s *Server) importTransactions(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, errors.New("no file uploaded"))
		return
	}
	format := export.CSV
	if strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		format = export.XLSX
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	result, err := s.importer.Import(c.Request.Context(), userID(c), f, format)
	if result != nil && result.Imported > 0 {
		s.invalidate(c)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
