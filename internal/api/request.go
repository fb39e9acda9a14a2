package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"finance-tracker-backend/internal/models"

	"github.com/gin-gonic/gin"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// flexTime accepts RFC 3339 timestamps and bare dates.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ptr returns nil for a missing or empty value.
func (t *flexTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.Invalid("date", "must be YYYY-MM-DD or RFC 3339")
}

// transactionFilter reads category, type, accountId, startDate and endDate.
// A bare endDate covers the whole day.
func transactionFilter(c *gin.Context) (models.TransactionFilter, error) {
	f := models.TransactionFilter{
		Category:  c.Query("category"),
		Type:      models.Direction(c.Query("type")),
		AccountID: c.Query("accountId"),
	}
	if f.Type != "" && !f.Type.Valid() {
		return f, models.Invalid("type", "must be income or expense")
	}
	if v := c.Query("startDate"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, models.Invalid("startDate", "must be YYYY-MM-DD or RFC 3339")
		}
		f.Start = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, models.Invalid("endDate", "must be YYYY-MM-DD or RFC 3339")
		}
		if len(strings.TrimSpace(v)) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.End = &t
	}
	return f, nil
}

// unfiltered reports whether f matches every transaction.
func unfiltered(f models.TransactionFilter) bool {
	return f.Category == "" && f.Type == "" && f.AccountID == "" && f.Start == nil && f.End == nil
}
