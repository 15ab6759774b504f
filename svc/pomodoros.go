package svc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/timer"
)

type PomodoroSvc interface {
	// HandleCompletion records finished work sessions. Break completions are ignored.
	HandleCompletion(ctx context.Context, ev timer.CompletionEvent) error
	DailyStats(ctx context.Context, date time.Time) (pomodo.DailyStats, error)
	Stats(ctx context.Context, now time.Time) (pomodo.Stats, error)
	PomodorosForTask(ctx context.Context, taskID int) ([]pomodo.PomodoroRecord, error)
	DeletePomodoro(ctx context.Context, id int) (pomodo.PomodoroRecord, error)
	Export(ctx context.Context, w io.Writer) error

	// TimerConfig overlays durations saved in settings on base.
	TimerConfig(ctx context.Context, base timer.Config) (timer.Config, error)
	SaveTimerConfig(ctx context.Context, conf timer.Config) error
}

type Export struct {
	ExportDate time.Time               `json:"export_date"`
	Tasks      []pomodo.Task           `json:"tasks"`
	Pomodoros  []pomodo.PomodoroRecord `json:"pomodoros"`
	Stats      pomodo.Stats            `json:"stats"`
}

type Option func(*pomodoroSvc)

func WithClock(now func() time.Time) Option {
	return func(s *pomodoroSvc) {
		s.now = now
	}
}

// impl
type pomodoroSvc struct {
	pomodoroRepo pomodo.PomodoroRepo
	taskRepo     pomodo.TaskRepo
	settingsRepo pomodo.SettingsRepo
	l            pomodo.Logger
	now          func() time.Time
}

func NewPomodoroSvc(
	pomodoroRepo pomodo.PomodoroRepo,
	taskRepo pomodo.TaskRepo,
	settingsRepo pomodo.SettingsRepo,
	logger pomodo.Logger,
	opts ...Option,
) PomodoroSvc {
	s := &pomodoroSvc{
		pomodoroRepo: pomodoroRepo,
		taskRepo:     taskRepo,
		settingsRepo: settingsRepo,
		l:            logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *pomodoroSvc) HandleCompletion(ctx context.Context, ev timer.CompletionEvent) error {
	if ev.Mode != timer.ModeWork {
		s.l.Debug("ignoring break completion", "session", ev.SessionID, "mode", ev.Mode)
		return nil
	}

	req := pomodo.RecordPomodoroRequest{
		TaskID:    ev.TaskID,
		Duration:  int(ev.ActualDuration / time.Second),
		StartTime: ev.StartedAt,
		EndTime:   ev.EndedAt,
	}
	record, err := s.pomodoroRepo.RecordPomodoro(ctx, req)
	if err != nil && req.TaskID != nil && errors.Is(err, pomodo.ErrNotFound) {
		// the task went away mid-session; keep the focus time unassociated
		s.l.Warn("recording pomodoro without task", "session", ev.SessionID, "taskID", *req.TaskID, "error", err)
		req.TaskID = nil
		record, err = s.pomodoroRepo.RecordPomodoro(ctx, req)
	}
	if err != nil {
		s.l.Error("failed to record pomodoro", "session", ev.SessionID, "error", err)
		return err
	}
	s.l.Info("recorded pomodoro", "session", ev.SessionID, "id", record.ID, "duration", record.Duration)
	return nil
}

func (s *pomodoroSvc) DailyStats(ctx context.Context, date time.Time) (pomodo.DailyStats, error) {
	return s.pomodoroRepo.DailyStats(ctx, date)
}

func (s *pomodoroSvc) Stats(ctx context.Context, now time.Time) (pomodo.Stats, error) {
	today, err := s.pomodoroRepo.DailyStats(ctx, now)
	if err != nil {
		return pomodo.Stats{}, err
	}
	total, err := s.pomodoroRepo.TotalDuration(ctx)
	if err != nil {
		return pomodo.Stats{}, err
	}
	return pomodo.Stats{
		TodayCount:      today.Count,
		TodayDuration:   today.TotalDuration,
		AllTimeDuration: total,
	}, nil
}

func (s *pomodoroSvc) PomodorosForTask(ctx context.Context, taskID int) ([]pomodo.PomodoroRecord, error) {
	if _, err := s.taskRepo.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.pomodoroRepo.ListPomodorosByTask(ctx, taskID)
}

func (s *pomodoroSvc) DeletePomodoro(ctx context.Context, id int) (pomodo.PomodoroRecord, error) {
	return s.pomodoroRepo.DeletePomodoro(ctx, id)
}

func (s *pomodoroSvc) Export(ctx context.Context, w io.Writer) error {
	now := s.now()
	tasks, err := s.taskRepo.ListTasks(ctx, nil)
	if err != nil {
		return err
	}
	records, err := s.pomodoroRepo.ListPomodoros(ctx)
	if err != nil {
		return err
	}
	stats, err := s.Stats(ctx, now)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export{
		ExportDate: now,
		Tasks:      tasks,
		Pomodoros:  records,
		Stats:      stats,
	}); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	s.l.Info("exported data", "tasks", len(tasks), "pomodoros", len(records))
	return nil
}

var timerSettings = []struct {
	key   string
	field func(*timer.Config) *time.Duration
}{
	{pomodo.SettingWorkDuration, func(c *timer.Config) *time.Duration { return &c.Work }},
	{pomodo.SettingShortBreakDuration, func(c *timer.Config) *time.Duration { return &c.ShortBreak }},
	{pomodo.SettingLongBreakDuration, func(c *timer.Config) *time.Duration { return &c.LongBreak }},
}

func (s *pomodoroSvc) TimerConfig(ctx context.Context, base timer.Config) (timer.Config, error) {
	conf := base
	for _, setting := range timerSettings {
		v, err := s.settingsRepo.GetSetting(ctx, setting.key)
		if errors.Is(err, pomodo.ErrNotFound) {
			continue
		}
		if err != nil {
			return timer.Config{}, err
		}
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			s.l.Warn("ignoring invalid setting", "key", setting.key, "value", v)
			continue
		}
		*setting.field(&conf) = time.Duration(minutes) * time.Minute
	}
	return conf, nil
}

// SaveTimerConfig stores the durations in whole minutes.
func (s *pomodoroSvc) SaveTimerConfig(ctx context.Context, conf timer.Config) error {
	for _, setting := range timerSettings {
		d := *setting.field(&conf)
		if d < time.Minute {
			return fmt.Errorf("%s must be at least one minute, got %s: %w", setting.key, d, pomodo.ErrValidation)
		}
	}
	for _, setting := range timerSettings {
		minutes := int(*setting.field(&conf) / time.Minute)
		if err := s.settingsRepo.SetSetting(ctx, setting.key, strconv.Itoa(minutes)); err != nil {
			return err
		}
	}
	s.l.Info("saved timer config", "work", conf.Work, "short_break", conf.ShortBreak, "long_break", conf.LongBreak)
	return nil
}
