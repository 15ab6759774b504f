package pomodo

import (
	"context"
	"time"
)

type PomodoroRepo interface {
	RecordPomodoro(ctx context.Context, req RecordPomodoroRequest) (PomodoroRecord, error)
	ListPomodoros(ctx context.Context) ([]PomodoroRecord, error)
	ListPomodorosByTask(ctx context.Context, taskID int) ([]PomodoroRecord, error)
	DeletePomodoro(ctx context.Context, id int) (PomodoroRecord, error)
	// DailyStats aggregates records whose start time falls on date's calendar day in date's location.
	DailyStats(ctx context.Context, date time.Time) (DailyStats, error)
	TotalDuration(ctx context.Context) (int, error)
}

type SettingsRepo interface {
	// GetSetting returns ErrNotFound when the key was never set.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

const (
	SettingWorkDuration       = "work_duration"
	SettingShortBreakDuration = "short_break_duration"
	SettingLongBreakDuration  = "long_break_duration"
)
