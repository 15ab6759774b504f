package pomodo

import (
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type TaskPriority int

const (
	PriorityHigh TaskPriority = iota + 1
	PriorityMedium
	PriorityLow
)

func (p TaskPriority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p TaskPriority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return fmt.Sprintf("TaskPriority(%d)", int(p))
}

// ParsePriority accepts a label ("high", "m", ...) or its stored number.
func ParsePriority(s string) (TaskPriority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h", "1":
		return PriorityHigh, nil
	case "medium", "m", "2":
		return PriorityMedium, nil
	case "low", "l", "3":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("unknown priority %q: %w", s, ErrValidation)
}

type TaskStatus int

const (
	StatusTodo TaskStatus = iota
	StatusInProgress
	StatusDone
)

func (s TaskStatus) Valid() bool {
	return s >= StatusTodo && s <= StatusDone
}

func (s TaskStatus) String() string {
	switch s {
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "InProgress"
	case StatusDone:
		return "Done"
	}
	return fmt.Sprintf("TaskStatus(%d)", int(s))
}

// ParseStatus accepts a label ("todo", "doing", "done", ...) or its stored number.
func ParseStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "t", "0":
		return StatusTodo, nil
	case "inprogress", "in-progress", "doing", "p", "1":
		return StatusInProgress, nil
	case "done", "d", "2":
		return StatusDone, nil
	}
	return 0, fmt.Errorf("unknown status %q: %w", s, ErrValidation)
}

// PomodoroRecord is a completed work session. Duration is in seconds.
type PomodoroRecord struct {
	ID        int       `json:"id"`
	TaskID    *int      `json:"task_id"`
	Duration  int       `json:"duration"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type DailyStats struct {
	Count         int `json:"count"`
	TotalDuration int `json:"total_duration"`
}

type Stats struct {
	TodayCount      int `json:"today_count"`
	TodayDuration   int `json:"today_duration"`
	AllTimeDuration int `json:"all_time_duration"`
}
