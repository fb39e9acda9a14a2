package api

import (
	"net/http"

	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type scheduledRequest struct {
	AccountID      string             `json:"accountId"`
	Amount         float64            `json:"amount"`
	Type           models.Direction   `json:"type"`
	Category       string             `json:"category"`
	Description    string             `json:"description"`
	ScheduledDate  *flexTime          `json:"scheduledDate"`
	IsRecurring    bool               `json:"isRecurring"`
	RecurrenceType *models.Recurrence `json:"recurrenceType"`
	RecurrenceEnd  *flexTime          `json:"recurrenceEnd"`
}

type scheduledPatchRequest struct {
	AccountID      *string                `json:"accountId"`
	Amount         *float64               `json:"amount"`
	Type           *models.Direction      `json:"type"`
	Category       *string                `json:"category"`
	Description    *string                `json:"description"`
	ScheduledDate  *flexTime              `json:"scheduledDate"`
	IsRecurring    *bool                  `json:"isRecurring"`
	RecurrenceType *models.Recurrence     `json:"recurrenceType"`
	RecurrenceEnd  *flexTime              `json:"recurrenceEnd"`
	Status         *models.ScheduleStatus `json:"status"`
}

func (s *Server) listScheduled(c *gin.Context) {
	status := models.ScheduleStatus(c.Query("status"))
	list, err := s.ledger.ListScheduled(c.Request.Context(), userID(c), status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getScheduled(c *gin.Context) {
	st, err := s.ledger.GetScheduled(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) createScheduled(c *gin.Context) {
	var req scheduledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := ledger.NewScheduled{
		AccountID:      req.AccountID,
		Amount:         req.Amount,
		Type:           req.Type,
		Category:       req.Category,
		Description:    req.Description,
		IsRecurring:    req.IsRecurring,
		RecurrenceType: req.RecurrenceType,
		RecurrenceEnd:  req.RecurrenceEnd.ptr(),
	}
	if d := req.ScheduledDate.ptr(); d != nil {
		in.ScheduledDate = *d
	}

	st, err := s.ledger.CreateScheduled(c.Request.Context(), userID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (s *Server) updateScheduled(c *gin.Context) {
	var req scheduledPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	st, err := s.ledger.UpdateScheduled(c.Request.Context(), userID(c), c.Param("id"), models.ScheduledPatch{
		AccountID:      req.AccountID,
		Amount:         req.Amount,
		Type:           req.Type,
		Category:       req.Category,
		Description:    req.Description,
		ScheduledDate:  req.ScheduledDate.ptr(),
		IsRecurring:    req.IsRecurring,
		RecurrenceType: req.RecurrenceType,
		RecurrenceEnd:  req.RecurrenceEnd.ptr(),
		Status:         req.Status,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// processScheduled applies a pending schedule now. Already processed or
// cancelled schedules answer 404.
func (s *Server) processScheduled(c *gin.Context) {
	res, err := s.ledger.ProcessScheduled(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	s.invalidate(c)
	c.JSON(http.StatusOK, res)
}

func (s *Server) deleteScheduled(c *gin.Context) {
	if err := s.ledger.DeleteScheduled(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheduled transaction deleted"})
}
