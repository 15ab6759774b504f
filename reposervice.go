package pomodo

import (
	"fmt"
	"strings"
	"time"
)

type CreateTaskRequest struct {
	Title       string
	Description string
	Priority    TaskPriority
}

// Normalize trims the title and defaults an unset priority to Medium.
func (r CreateTaskRequest) Normalize() CreateTaskRequest {
	r.Title = strings.TrimSpace(r.Title)
	if r.Priority == 0 {
		r.Priority = PriorityMedium
	}
	return r
}

func (r CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("provide required field 'Title': %w", ErrValidation)
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("invalid priority %d: %w", r.Priority, ErrValidation)
	}
	return nil
}

// TaskUpdate holds the fields to change. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	Status      *TaskStatus
}

func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.Status == nil
}

func (u TaskUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return fmt.Errorf("field 'Title' cannot be empty: %w", ErrValidation)
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return fmt.Errorf("invalid priority %d: %w", *u.Priority, ErrValidation)
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("invalid status %d: %w", *u.Status, ErrValidation)
	}
	return nil
}

// Apply returns t with the supplied fields overwritten. It does not touch timestamps.
func (u TaskUpdate) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	return t
}

type RecordPomodoroRequest struct {
	TaskID    *int
	Duration  int
	StartTime time.Time
	EndTime   time.Time
}

func (r RecordPomodoroRequest) Validate() error {
	if r.Duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %d: %w", r.Duration, ErrValidation)
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return fmt.Errorf("provide required fields 'StartTime' and 'EndTime': %w", ErrValidation)
	}
	if r.EndTime.Before(r.StartTime) {
		return fmt.Errorf("end time %s is before start time %s: %w", r.EndTime, r.StartTime, ErrValidation)
	}
	return nil
}
