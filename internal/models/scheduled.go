package models

import "time"

// ScheduleStatus is the lifecycle state of a scheduled transaction.
type ScheduleStatus string

const (
	StatusPending   ScheduleStatus = "pending"
	StatusProcessed ScheduleStatus = "processed"
	StatusCancelled ScheduleStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusCancelled:
		return true
	}
	return false
}

// Recurrence is the step between occurrences of a recurring schedule.
type Recurrence string

const (
	Daily   Recurrence = "daily"
	Weekly  Recurrence = "weekly"
	Monthly Recurrence = "monthly"
	Yearly  Recurrence = "yearly"
)

// Valid reports whether r is a known recurrence type.
func (r Recurrence) Valid() bool {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Next returns the occurrence following t.
func (r Recurrence) Next(t time.Time) time.Time {
	switch r {
	case Daily:
		return t.AddDate(0, 0, 1)
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// ScheduledTransaction is a template for a future transaction.
type ScheduledTransaction struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	AccountID      string         `json:"accountId"`
	Amount         float64        `json:"amount"`
	Type           Direction      `json:"type"`
	Category       string         `json:"category"`
	Description    string         `json:"description"`
	ScheduledDate  time.Time      `json:"scheduledDate"`
	IsRecurring    bool           `json:"isRecurring"`
	RecurrenceType *Recurrence    `json:"recurrenceType,omitempty"`
	RecurrenceEnd  *time.Time     `json:"recurrenceEnd,omitempty"`
	Status         ScheduleStatus `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`

	AccountName *string      `json:"accountName,omitempty"`
	AccountKind *AccountKind `json:"accountType,omitempty"`
}

// Validate checks field values and drops recurrence fields on one-off schedules.
func (s *ScheduledTransaction) Validate() error {
	if s.AccountID == "" {
		return Invalid("accountId", "is required")
	}
	if err := ValidateAmount(s.Amount); err != nil {
		return err
	}
	if !s.Type.Valid() {
		return Invalid("type", "must be income or expense")
	}
	if s.ScheduledDate.IsZero() {
		return Invalid("scheduledDate", "is required")
	}
	if !s.Status.Valid() {
		return Invalid("status", "must be one of pending, processed, cancelled")
	}
	if !s.IsRecurring {
		s.RecurrenceType = nil
		s.RecurrenceEnd = nil
		return nil
	}
	if s.RecurrenceType == nil || !s.RecurrenceType.Valid() {
		return Invalid("recurrenceType", "must be one of daily, weekly, monthly, yearly")
	}
	return nil
}

// NextOccurrence returns the pending template for the occurrence after s,
// or nil when s does not recur or the next date passes RecurrenceEnd.
func (s *ScheduledTransaction) NextOccurrence() *ScheduledTransaction {
	if !s.IsRecurring || s.RecurrenceType == nil {
		return nil
	}
	next := s.RecurrenceType.Next(s.ScheduledDate)
	if s.RecurrenceEnd != nil && next.After(*s.RecurrenceEnd) {
		return nil
	}
	n := *s
	n.ID = ""
	n.ScheduledDate = next
	n.Status = StatusPending
	n.CreatedAt = time.Time{}
	n.AccountName, n.AccountKind = nil, nil
	return &n
}

// ScheduledPatch carries the mutable scheduled-transaction fields.
type ScheduledPatch struct {
	AccountID      *string         `json:"accountId"`
	Amount         *float64        `json:"amount"`
	Type           *Direction      `json:"type"`
	Category       *string         `json:"category"`
	Description    *string         `json:"description"`
	ScheduledDate  *time.Time      `json:"scheduledDate"`
	IsRecurring    *bool           `json:"isRecurring"`
	RecurrenceType *Recurrence     `json:"recurrenceType"`
	RecurrenceEnd  *time.Time      `json:"recurrenceEnd"`
	Status         *ScheduleStatus `json:"status"`
}

// Apply writes the patch onto s. Any valid status may be written.
func (p ScheduledPatch) Apply(s *ScheduledTransaction) error {
	if p.AccountID != nil && *p.AccountID != "" {
		s.AccountID = *p.AccountID
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.Type != nil && *p.Type != "" {
		s.Type = *p.Type
	}
	if p.Category != nil && *p.Category != "" {
		s.Category = *p.Category
	}
	if p.Description != nil && *p.Description != "" {
		s.Description = *p.Description
	}
	if p.ScheduledDate != nil {
		s.ScheduledDate = *p.ScheduledDate
	}
	if p.IsRecurring != nil {
		s.IsRecurring = *p.IsRecurring
	}
	if p.RecurrenceType != nil && *p.RecurrenceType != "" {
		rt := *p.RecurrenceType
		s.RecurrenceType = &rt
	}
	if p.RecurrenceEnd != nil {
		re := *p.RecurrenceEnd
		s.RecurrenceEnd = &re
	}
	if p.Status != nil && *p.Status != "" {
		s.Status = *p.Status
	}
	return s.Validate()
}
