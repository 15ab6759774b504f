package svc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/charmlog"
	"github.com/benjamonnguyen/pomodo/svc"
	"github.com/benjamonnguyen/pomodo/testutil"
	"github.com/benjamonnguyen/pomodo/timer"
)

type recordingRepo struct {
	pomodo.PomodoroRepo
	recorded []pomodo.RecordPomodoroRequest
}

func (r *recordingRepo) RecordPomodoro(_ context.Context, req pomodo.RecordPomodoroRequest) (pomodo.PomodoroRecord, error) {
	r.recorded = append(r.recorded, req)
	return pomodo.PomodoroRecord{
		ID:        len(r.recorded),
		TaskID:    req.TaskID,
		Duration:  req.Duration,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}, nil
}

func newPomodoroSvc(tdb testutil.TestDB) svc.PomodoroSvc {
	return svc.NewPomodoroSvc(tdb.Pomodoros, tdb.Tasks, tdb.Settings, charmlog.Discard(), svc.WithClock(tdb.Clock.Now))
}

// runSession drives e one second at a time until the running session finishes.
func runSession(e *timer.Engine, clock *testutil.Clock) {
	for e.State() == timer.StateRunning {
		clock.Advance(time.Second)
		e.Tick(time.Second)
	}
}

func TestHandleCompletion_RecordsWorkOnly(t *testing.T) {
	repo := &recordingRepo{}
	s := svc.NewPomodoroSvc(repo, nil, nil, charmlog.Discard())
	clock := testutil.NewClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))
	e := timer.New(timer.Config{Work: time.Minute, ShortBreak: time.Minute, LongBreak: time.Minute},
		timer.WithClock(clock.Now))
	e.OnComplete(func(ev timer.CompletionEvent) {
		require.NoError(t, s.HandleCompletion(context.Background(), ev))
	})

	taskID := 7
	e.Start(timer.ModeWork, &taskID)
	runSession(e, clock)
	e.Start(timer.ModeShortBreak, nil)
	runSession(e, clock)
	e.Start(timer.ModeLongBreak, nil)
	runSession(e, clock)

	require.Len(t, repo.recorded, 1)
	got := repo.recorded[0]
	assert.Equal(t, 60, got.Duration)
	require.NotNil(t, got.TaskID)
	assert.Equal(t, 7, *got.TaskID)
	assert.Equal(t, got.StartTime.Add(time.Minute), got.EndTime)
}

func TestHandleCompletion_ResetRecordsNothing(t *testing.T) {
	repo := &recordingRepo{}
	s := svc.NewPomodoroSvc(repo, nil, nil, charmlog.Discard())
	e := timer.New(timer.DefaultConfig())
	e.OnComplete(func(ev timer.CompletionEvent) {
		_ = s.HandleCompletion(context.Background(), ev)
	})

	e.Start(timer.ModeWork, nil)
	e.Tick(10 * time.Minute)
	e.Reset()
	e.Tick(time.Hour)

	assert.Empty(t, repo.recorded)
}

func TestWriteReportScenario(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()
	tasks := svc.NewTaskSvc(tdb.Tasks, charmlog.Discard())
	pomodoros := newPomodoroSvc(tdb)

	task, err := tasks.CreateTask(ctx, pomodo.CreateTaskRequest{Title: "Write report", Priority: pomodo.PriorityHigh})
	require.NoError(t, err)
	_, err = tasks.StartTask(ctx, task.ID)
	require.NoError(t, err)

	e := timer.New(timer.DefaultConfig(), timer.WithClock(tdb.Clock.Now))
	e.OnComplete(func(ev timer.CompletionEvent) {
		require.NoError(t, pomodoros.HandleCompletion(ctx, ev))
	})
	e.Start(timer.ModeWork, &task.ID)
	runSession(e, tdb.Clock)

	records, err := pomodoros.PomodorosForTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1500, records[0].Duration)

	_, err = tasks.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	done, err := tasks.FilterByStatus(ctx, pomodo.StatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Write report", done[0].Title)

	stats, err := pomodoros.DailyStats(ctx, tdb.Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, pomodo.DailyStats{Count: 1, TotalDuration: 1500}, stats)
}

func TestStats(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := newPomodoroSvc(tdb)
	now := tdb.Clock.Now()

	for _, start := range []time.Time{now.AddDate(0, 0, -1), now, now.Add(time.Hour)} {
		_, err := tdb.Pomodoros.RecordPomodoro(ctx, pomodo.RecordPomodoroRequest{
			Duration: 1500, StartTime: start, EndTime: start.Add(25 * time.Minute),
		})
		require.NoError(t, err)
	}

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, pomodo.Stats{TodayCount: 2, TodayDuration: 3000, AllTimeDuration: 4500}, stats)

	_, err = s.PomodorosForTask(ctx, 12)
	require.ErrorIs(t, err, pomodo.ErrNotFound)
}

func TestExport(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := newPomodoroSvc(tdb)

	task, err := tdb.Tasks.CreateTask(ctx, pomodo.CreateTaskRequest{Title: "export me"})
	require.NoError(t, err)
	start := tdb.Clock.Now()
	_, err = tdb.Pomodoros.RecordPomodoro(ctx, pomodo.RecordPomodoroRequest{
		TaskID: &task.ID, Duration: 1500, StartTime: start, EndTime: start.Add(25 * time.Minute),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.ElementsMatch(t, []string{"export_date", "tasks", "pomodoros", "stats"}, keys(raw))

	var got svc.Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, tdb.Clock.Now().Equal(got.ExportDate))
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "export me", got.Tasks[0].Title)
	require.Len(t, got.Pomodoros, 1)
	assert.Equal(t, task.ID, *got.Pomodoros[0].TaskID)
	assert.Equal(t, pomodo.Stats{TodayCount: 1, TodayDuration: 1500, AllTimeDuration: 1500}, got.Stats)
	assert.Contains(t, buf.String(), "\n  \"tasks\"", "output is indented")
}

func TestTimerConfig_OverlaysSavedSettings(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := newPomodoroSvc(tdb)
	base := timer.DefaultConfig()

	conf, err := s.TimerConfig(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, base, conf)

	require.NoError(t, s.SaveTimerConfig(ctx, timer.Config{
		Work:       50 * time.Minute,
		ShortBreak: 10 * time.Minute,
		LongBreak:  30 * time.Minute,
	}))
	conf, err = s.TimerConfig(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Minute, conf.Work)
	assert.Equal(t, 10*time.Minute, conf.ShortBreak)
	assert.Equal(t, 30*time.Minute, conf.LongBreak)
	assert.Equal(t, base.LongBreakEvery, conf.LongBreakEvery)

	// junk in the table falls back to base
	require.NoError(t, tdb.Settings.SetSetting(ctx, pomodo.SettingWorkDuration, "soon"))
	conf, err = s.TimerConfig(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, base.Work, conf.Work)

	err = s.SaveTimerConfig(ctx, timer.Config{Work: 30 * time.Second, ShortBreak: time.Minute, LongBreak: time.Minute})
	require.ErrorIs(t, err, pomodo.ErrValidation)
}

func TestHandleCompletion_DeletedTaskKeepsRecord(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	s := newPomodoroSvc(tdb)
	ctx := context.Background()
	task, err := tdb.Tasks.CreateTask(ctx, pomodo.CreateTaskRequest{Title: "Write report"})
	require.NoError(t, err)

	e := timer.New(timer.DefaultConfig(), timer.WithClock(tdb.Clock.Now))
	var ev timer.CompletionEvent
	e.OnComplete(func(got timer.CompletionEvent) { ev = got })
	e.Start(timer.ModeWork, &task.ID)
	tdb.Clock.Advance(30 * time.Second)
	e.Tick(30 * time.Second)
	_, err = tdb.Tasks.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	runSession(e, tdb.Clock)
	require.Equal(t, &task.ID, ev.TaskID)

	require.NoError(t, s.HandleCompletion(ctx, ev))

	records, err := tdb.Pomodoros.ListPomodoros(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].TaskID)
	assert.Equal(t, 1500, records[0].Duration)

	stats, err := s.DailyStats(ctx, tdb.Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, pomodo.DailyStats{Count: 1, TotalDuration: 1500}, stats)
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
