package model

import (
	"encoding/json"
	"time"
)

// Exam is an exam record managed from the admin dashboard. Questions are kept
// as opaque JSON; their structure is owned by the frontend.
type Exam struct {
	ID              string
	Title           string
	Subject         string
	Description     string
	DurationMinutes int
	Questions       json.RawMessage
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ExamPatch holds a partial exam update. Nil fields are left unchanged.
type ExamPatch struct {
	Title           *string
	Subject         *string
	Description     *string
	DurationMinutes *int
	Questions       json.RawMessage
}

// Apply copies every non-nil field of p onto e. The ID is never changed.
func (p ExamPatch) Apply(e *Exam) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Subject != nil {
		e.Subject = *p.Subject
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.DurationMinutes != nil {
		e.DurationMinutes = *p.DurationMinutes
	}
	if p.Questions != nil {
		e.Questions = p.Questions
	}
}
