package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/charmlog"
	"github.com/benjamonnguyen/pomodo/svc"
	"github.com/benjamonnguyen/pomodo/testutil"
	"github.com/benjamonnguyen/pomodo/timer"
)

func newTestModel(t *testing.T) (model, testutil.TestDB) {
	tdb := testutil.SetupTestDB(t)
	l := charmlog.Discard()
	logger = l
	return model{
		l:           l,
		taskSvc:     svc.NewTaskSvc(tdb.Tasks, l),
		pomodoroSvc: svc.NewPomodoroSvc(tdb.Pomodoros, tdb.Tasks, tdb.Settings, l, svc.WithClock(tdb.Clock.Now)),
		engine:      timer.New(timer.DefaultConfig(), timer.WithClock(tdb.Clock.Now)),
		now:         tdb.Clock.Now,
		lastTick:    tdb.Clock.Now(),
		cmdTimeout:  time.Second,
		userinput:   textinput.New(),
		vp:          viewport.New(80, 20),
	}, tdb
}

func TestModel_AddAndCompleteTask(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := m.handleInput("Write report !h")
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, TasksMsg{}, msg)
	m, _ = m.updateParent(msg)
	require.Len(t, m.tasks, 1)
	task := m.tasks[0]
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, pomodo.PriorityHigh, task.Priority)

	m, cmd = m.handleInput("/c 1")
	m, _ = m.updateParent(cmd())
	assert.Equal(t, pomodo.StatusDone, m.tasks[0].Status)

	m, cmd = m.handleInput("/f todo")
	m, _ = m.updateParent(cmd())
	assert.Empty(t, m.tasks)
	assert.Contains(t, m.renderTasks(), "no Todo tasks")
}

func TestModel_ErrorsBecomeAlerts(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := m.handleInput("/c 42")
	msg := cmd()
	require.IsType(t, ErrorMsg{}, msg)
	assert.ErrorIs(t, msg.(ErrorMsg).err, pomodo.ErrNotFound)

	m, next := m.updateParent(msg)
	assert.Nil(t, next, "the program keeps running")
	require.Len(t, m.alerts, 1)
	assert.Contains(t, m.alerts[0], "not found")
}

func TestModel_WorkSessionIsRecorded(t *testing.T) {
	m, tdb := newTestModel(t)
	ctx := context.Background()
	task, err := tdb.Tasks.CreateTask(ctx, pomodo.CreateTaskRequest{Title: "Write report"})
	require.NoError(t, err)

	m, cmd := m.handleInput("/w 1")
	msg := cmd()
	require.Equal(t, StartSessionMsg{mode: timer.ModeWork, taskID: &task.ID}, msg)
	m, _ = m.updateParent(msg)
	require.Equal(t, timer.StateRunning, m.engine.State())

	got, err := tdb.Tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, pomodo.StatusInProgress, got.Status)

	var ev timer.CompletionEvent
	m.engine.OnComplete(func(got timer.CompletionEvent) { ev = got })
	for m.engine.State() == timer.StateRunning {
		tdb.Clock.Advance(time.Second)
		m, _ = m.advanceTimer()
	}
	require.Equal(t, timer.StateFinished, m.engine.State())
	assert.Equal(t, timer.ModeShortBreak, m.engine.NextMode())
	assert.Equal(t, 25*time.Minute, ev.ActualDuration)

	done := m.recordCompletion(ev)().(CompletionMsg)
	require.NoError(t, done.err)
	stats, err := m.pomodoroSvc.Stats(ctx, tdb.Clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TodayCount)
	assert.Equal(t, 1500, stats.TodayDuration)
}

func TestModel_TimerControls(t *testing.T) {
	m, tdb := newTestModel(t)

	m, _ = m.handleInput("/b")
	require.Equal(t, timer.StateRunning, m.engine.State())
	require.Equal(t, timer.ModeShortBreak, m.engine.Mode())

	tdb.Clock.Advance(time.Minute)
	m, _ = m.advanceTimer()
	assert.Equal(t, 4*time.Minute, m.engine.Remaining())

	m, _ = m.handleInput("/z")
	assert.Equal(t, timer.StatePaused, m.engine.State())
	tdb.Clock.Advance(time.Minute)
	m, _ = m.advanceTimer()
	assert.Equal(t, 4*time.Minute, m.engine.Remaining(), "paused time does not count")

	m, _ = m.handleInput("/g")
	assert.Equal(t, timer.StateRunning, m.engine.State())
	assert.Equal(t, timer.ModeShortBreak, m.engine.Mode())

	m, _ = m.handleInput("/w")
	assert.Contains(t, m.alerts[len(m.alerts)-1], "already running")

	m, _ = m.handleInput("/k")
	assert.Equal(t, timer.StateIdle, m.engine.State())
}

func TestModel_WorkOnOtherTaskWhilePaused(t *testing.T) {
	m, tdb := newTestModel(t)
	ctx := context.Background()
	first, err := tdb.Tasks.CreateTask(ctx, pomodo.CreateTaskRequest{Title: "Write report"})
	require.NoError(t, err)
	second, err := tdb.Tasks.CreateTask(ctx, pomodo.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	m, cmd := m.handleInput("/w 1")
	m, _ = m.updateParent(cmd())
	m, _ = m.handleInput("/z")
	require.Equal(t, timer.StatePaused, m.engine.State())

	m, cmd = m.handleInput("/w 2")
	assert.Nil(t, cmd)
	assert.Contains(t, m.alerts[len(m.alerts)-1], "paused")
	assert.Equal(t, &first.ID, m.engine.TaskID())
	assert.Equal(t, &first.ID, m.lastWorkTask)

	got, err := tdb.Tasks.GetTask(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, pomodo.StatusTodo, got.Status)
}

func TestModel_DeletedTaskIsNotResumed(t *testing.T) {
	m, tdb := newTestModel(t)
	ctx := context.Background()
	task, err := tdb.Tasks.CreateTask(ctx, pomodo.CreateTaskRequest{Title: "Write report"})
	require.NoError(t, err)

	m, cmd := m.handleInput("/w 1")
	m, _ = m.updateParent(cmd())
	for m.engine.State() == timer.StateRunning {
		tdb.Clock.Advance(time.Second)
		m, _ = m.advanceTimer()
	}
	m, _ = m.handleInput("/g")
	require.Equal(t, timer.ModeShortBreak, m.engine.Mode())

	m, cmd = m.handleInput("/x 1")
	require.NotNil(t, cmd)
	assert.Nil(t, m.lastWorkTask)
	_, err = m.taskSvc.DeleteTask(ctx, task.ID)
	require.NoError(t, err)

	for m.engine.State() == timer.StateRunning {
		tdb.Clock.Advance(time.Second)
		m, _ = m.advanceTimer()
	}
	m, _ = m.handleInput("/g")
	require.Equal(t, timer.StateRunning, m.engine.State())
	assert.Equal(t, timer.ModeWork, m.engine.Mode())
	assert.Nil(t, m.engine.TaskID())
}

func TestModel_SetDurations(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := m.handleInput("/t 50 10 30")
	msg := cmd()
	require.IsType(t, ConfigMsg{}, msg)
	m, _ = m.updateParent(msg)
	assert.Equal(t, 50*time.Minute, m.engine.Config().Work)

	conf, err := m.pomodoroSvc.TimerConfig(context.Background(), timer.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, conf.LongBreak)

	m, cmd = m.handleInput("/t 50 x 30")
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.alerts)
}

func TestParseProgramArgs(t *testing.T) {
	m, tdb := newTestModel(t)
	ctx := context.Background()

	opts, err := parseProgramArgs(ctx, nil, m.taskSvc, m.pomodoroSvc)
	require.NoError(t, err)
	assert.Equal(t, options{}, opts)

	opts, err = parseProgramArgs(ctx, []string{"/a", "Write", "report", "!l"}, m.taskSvc, m.pomodoroSvc)
	require.NoError(t, err)
	assert.True(t, opts.shouldExit)
	tasks, err := tdb.Tasks.ListTasks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write report", tasks[0].Title)
	assert.Equal(t, pomodo.PriorityLow, tasks[0].Priority)

	file := filepath.Join(t.TempDir(), "export.json")
	opts, err = parseProgramArgs(ctx, []string{"/export", file}, m.taskSvc, m.pomodoroSvc)
	require.NoError(t, err)
	assert.True(t, opts.shouldExit)
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"export_date"`)

	opts, err = parseProgramArgs(ctx, []string{"/review"}, m.taskSvc, m.pomodoroSvc)
	require.NoError(t, err)
	assert.True(t, opts.showHelp)
}
