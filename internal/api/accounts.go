package api

import (
	"net/http"

	"finance-tracker-backend/internal/cache"
	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type accountRequest struct {
	Name           string             `json:"name"`
	Type           models.AccountKind `json:"type"`
	Balance        float64            `json:"balance"`
	CreditLimit    *float64           `json:"creditLimit"`
	PaymentDueDate *flexTime          `json:"paymentDueDate"`
	Currency       string             `json:"currency"`
}

type accountPatchRequest struct {
	Name           *string   `json:"name"`
	Balance        *float64  `json:"balance"`
	CreditLimit    *float64  `json:"creditLimit"`
	PaymentDueDate *flexTime `json:"paymentDueDate"`
	Currency       *string   `json:"currency"`
}

func (s *Server) listAccounts(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	var accounts []*models.Account
	if s.cache.Get(ctx, cache.AccountsKey(uid), &accounts) {
		c.JSON(http.StatusOK, accounts)
		return
	}

	accounts, err := s.ledger.ListAccounts(ctx, uid)
	if err != nil {
		fail(c, err)
		return
	}
	s.cache.Set(ctx, cache.AccountsKey(uid), accounts, cache.AccountsTTL)
	c.JSON(http.StatusOK, accounts)
}

func (s *Server) getAccount(c *gin.Context) {
	a, err := s.ledger.GetAccount(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) createAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	a, err := s.ledger.CreateAccount(c.Request.Context(), userID(c), ledger.NewAccount{
		Name:           req.Name,
		Type:           req.Type,
		Balance:        req.Balance,
		CreditLimit:    req.CreditLimit,
		PaymentDueDate: req.PaymentDueDate.ptr(),
		Currency:       req.Currency,
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusCreated, a)
}

func (s *Server) updateAccount(c *gin.Context) {
	var req accountPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	a, err := s.ledger.UpdateAccount(c.Request.Context(), userID(c), c.Param("id"), models.AccountPatch{
		Name:           req.Name,
		Balance:        req.Balance,
		CreditLimit:    req.CreditLimit,
		PaymentDueDate: req.PaymentDueDate.ptr(),
		Currency:       req.Currency,
	})
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, a)
}

func (s *Server) deleteAccount(c *gin.Context) {
	if err := s.ledger.DeleteAccount(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
