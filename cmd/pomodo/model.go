package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/svc"
	"github.com/benjamonnguyen/pomodo/timer"
)

const logo = `
	██████╗  ██████╗ ███╗   ███╗ ██████╗ ██████╗  ██████╗
	██╔══██╗██╔═══██╗████╗ ████║██╔═══██╗██╔══██╗██╔═══██╗
	██████╔╝██║   ██║██╔████╔██║██║   ██║██║  ██║██║   ██║
	██╔═══╝ ██║   ██║██║╚██╔╝██║██║   ██║██║  ██║██║   ██║
	██║     ╚██████╔╝██║ ╚═╝ ██║╚██████╔╝██████╔╝╚██████╔╝
	╚═╝      ╚═════╝ ╚═╝     ╚═╝ ╚═════╝ ╚═════╝  ╚═════╝`

const programUsage = `Usage:
  pomodo: start the timer and task list
  pomodo /a <task> [!h|!m|!l]: add a task
  pomodo /export [file]: export tasks, pomodoros and stats as JSON`

const commandHelp = `COMMANDS:
  <task>: add a task
  /a <task> [!h|!m|!l]: add a task with a priority
  /e <id> <title>: edit a task's title
  /i <id> <description>: set a task's description
  /p <id> <high|medium|low>: set a task's priority
  /c <id>: complete a task
  /r <id>: reopen a task
  /x <id>: delete a task and its pomodoros
  /f [todo|doing|done]: filter tasks by status; if no status provided, clear filter

  /w [id]: start a work session, optionally on a task
  /b: start a short break
  /l: start a long break
  /g: resume, or start the suggested next session
  /z: pause
  /k: reset the timer
  /t <work> <short_break> <long_break>: set durations in minutes

  /s: refresh stats
  /o [file]: export data as JSON
`

type model struct {
	// children
	vp        viewport.Model
	userinput textinput.Model

	// supplied
	l           pomodo.Logger
	taskSvc     svc.TaskSvc
	pomodoroSvc svc.PomodoroSvc
	engine      *timer.Engine
	now         func() time.Time

	// state
	tasks    []pomodo.Task
	filter   *pomodo.TaskStatus
	stats    pomodo.Stats
	alerts   []string
	lastTick time.Time
	quitting bool
	h        int

	// lastWorkTask is offered again when /g starts the next work session
	lastWorkTask *int

	// configuration
	cmdTimeout time.Duration
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadTasks, m.loadStats, textinput.Blink, tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var tiCmd, vpCmd, cmd tea.Cmd

	m, cmd = m.updateParent(msg)

	// update children

	m.userinput, tiCmd = m.userinput.Update(msg)

	switch msg.(type) {
	case tea.KeyMsg:
		// vp updates on KeyMsg cause the view to flicker
	default:
		m.vp, vpCmd = m.vp.Update(msg)
	}

	return m, tea.Batch(tiCmd, vpCmd, cmd)
}

func (m model) updateParent(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		if errors.Is(msg.err, pomodo.ErrStorage) {
			m.l.Error("command failed", "error", msg.err)
		} else {
			m.l.Warn("command rejected", "error", msg.err)
		}
		m.addAlert(msg.err.Error(), colorRed)
		m.resizeViewport()
		return m, nil
	case AlertMsg:
		m.addAlert(msg.alert, colorGreen)
		m.resizeViewport()
		return m, nil
	case TickMsg:
		return m.advanceTimer()
	case CompletionMsg:
		if msg.err != nil {
			m.addAlert(fmt.Sprintf("failed to record pomodoro: %s", msg.err), colorRed)
		}
		return m, m.loadStats
	case StartSessionMsg:
		m.startSession(msg.mode, msg.taskID)
		m.vp.SetContent(m.renderTasks())
		return m, nil
	case ConfigMsg:
		m.engine.SetConfig(msg.conf)
		m.addAlert(fmt.Sprintf("durations set to %s / %s / %s", msg.conf.Work, msg.conf.ShortBreak, msg.conf.LongBreak), colorGreen)
		return m, nil
	case TasksMsg:
		m.tasks = msg.tasks
		if msg.alert != "" {
			m.addAlert(msg.alert, colorGreen)
		}
		m.vp.SetContent(m.renderTasks())
		m.resizeViewport()
		return m, nil
	case StatsMsg:
		m.stats = msg.stats
		return m, nil
	case tea.WindowSizeMsg:
		m.h = msg.Height
		m.userinput.Width = msg.Width
		m.vp.Width = msg.Width
		m.resizeViewport()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			input := m.userinput.Value()
			m.userinput.Reset()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}

			var cmd tea.Cmd
			m.alerts = nil
			m, cmd = m.handleInput(input)
			m.vp.SetContent(m.renderTasks())
			m.resizeViewport()
			return m, cmd
		case tea.KeyCtrlC:
			return m.endProgram()
		}
	}
	return m, nil
}

// advanceTimer feeds the engine the wall time since the previous tick.
func (m model) advanceTimer() (model, tea.Cmd) {
	now := m.now()
	elapsed := now.Sub(m.lastTick)
	m.lastTick = now
	if m.engine.State() != timer.StateRunning {
		return m, tick()
	}

	ev, done := m.engine.Tick(elapsed)
	if !done {
		return m, tick()
	}

	m.addAlert(fmt.Sprintf("%s finished, /g to start %s", ev.Mode, m.engine.NextMode()), colorCyan)
	m.vp.SetContent(m.renderTasks())
	m.resizeViewport()
	return m, tea.Batch(tick(), m.recordCompletion(ev))
}

func (m model) recordCompletion(ev timer.CompletionEvent) tea.Cmd {
	return func() tea.Msg {
		timeout, cancel := m.newTimeout()
		defer cancel()
		return CompletionMsg{
			ev:  ev,
			err: m.pomodoroSvc.HandleCompletion(timeout, ev),
		}
	}
}

func (m *model) startSession(mode timer.Mode, taskID *int) {
	if m.engine.State() == timer.StateRunning {
		m.addAlert("timer is already running, /k to reset", colorYellow)
		return
	}
	m.lastTick = m.now()
	m.engine.Start(mode, taskID)
	if mode == timer.ModeWork {
		m.lastWorkTask = taskID
	}
}

func (m model) loadTasks() tea.Msg {
	timeout, cancel := m.newTimeout()
	defer cancel()

	tasks, err := m.listTasks(timeout)
	if err != nil {
		return ErrorMsg{
			err: err,
		}
	}
	return TasksMsg{
		tasks: tasks,
	}
}

func (m model) listTasks(ctx context.Context) ([]pomodo.Task, error) {
	if m.filter != nil {
		return m.taskSvc.FilterByStatus(ctx, *m.filter)
	}
	return m.taskSvc.ListTasks(ctx)
}

func (m model) loadStats() tea.Msg {
	timeout, cancel := m.newTimeout()
	defer cancel()

	stats, err := m.pomodoroSvc.Stats(timeout, m.now())
	if err != nil {
		return ErrorMsg{
			err: err,
		}
	}
	return StatsMsg{
		stats: stats,
	}
}

// taskCmd runs op against the services and reloads the task list, reporting done on success.
func (m model) taskCmd(op func(context.Context) (pomodo.Task, error), done string) tea.Cmd {
	return func() tea.Msg {
		timeout, cancel := m.newTimeout()
		defer cancel()

		t, err := op(timeout)
		if err != nil {
			return ErrorMsg{
				err: err,
			}
		}
		tasks, err := m.listTasks(timeout)
		if err != nil {
			return ErrorMsg{
				err: err,
			}
		}
		return TasksMsg{
			tasks: tasks,
			alert: fmt.Sprintf("%s #%d %s", done, t.ID, t.Title),
		}
	}
}

func (m model) endProgram() (model, tea.Cmd) {
	m.quitting = true
	if m.engine.State() == timer.StateRunning || m.engine.State() == timer.StatePaused {
		m.l.Info("quitting with unfinished session", "session", m.engine.SessionID(), "remaining", m.engine.Remaining())
	}
	m.resizeViewport()
	return m, tea.Quit
}

func (m model) handleInput(input string) (model, tea.Cmd) {
	c, err := parseCommand(input)
	if err != nil {
		m.addAlert(err.Error(), colorYellow)
		return m, nil
	}
	m.l.Debug("parsed command", "cmd", c.name, "id", c.id, "arg", c.arg)

	switch c.name {
	case "/a":
		req, err := parseNewTask(c.arg)
		if err != nil {
			m.addAlert(err.Error(), colorYellow)
			return m, nil
		}
		return m, m.taskCmd(func(ctx context.Context) (pomodo.Task, error) {
			return m.taskSvc.CreateTask(ctx, req)
		}, "added")
	case "/e":
		return m, m.taskCmd(func(ctx context.Context) (pomodo.Task, error) {
			return m.taskSvc.UpdateTask(ctx, c.id, pomodo.TaskUpdate{Title: &c.arg})
		}, "edited")
	case "/i":
		return m, m.taskCmd(func(ctx context.Context) (pomodo.Task, error) {
			return m.taskSvc.UpdateTask(ctx, c.id, pomodo.TaskUpdate{Description: &c.arg})
		}, "described")
	case "/p":
		p, err := pomodo.ParsePriority(c.arg)
		if err != nil {
			m.addAlert(err.Error(), colorYellow)
			return m, nil
		}
		return m, m.taskCmd(func(ctx context.Context) (pomodo.Task, error) {
			return m.taskSvc.UpdateTask(ctx, c.id, pomodo.TaskUpdate{Priority: &p})
		}, "reprioritized")
	case "/c":
		return m, m.taskCmd(func(ctx context.Context) (pomodo.Task, error) {
			return m.taskSvc.CompleteTask(ctx, c.id)
		}, "completed")
	case "/r":
		return m, m.taskCmd(func(ctx context.Context) (pomodo.Task, error) {
			return m.taskSvc.ReopenTask(ctx, c.id)
		}, "reopened")
	case "/x":
		if id := m.engine.TaskID(); id != nil && *id == c.id && m.engine.State() != timer.StateIdle {
			m.engine.Reset()
		}
		if m.lastWorkTask != nil && *m.lastWorkTask == c.id {
			m.lastWorkTask = nil
		}
		return m, tea.Batch(m.taskCmd(func(ctx context.Context) (pomodo.Task, error) {
			return m.taskSvc.DeleteTask(ctx, c.id)
		}, "deleted"), m.loadStats)
	case "/f":
		if c.arg == "" {
			m.filter = nil
			return m, m.loadTasks
		}
		status, err := pomodo.ParseStatus(c.arg)
		if err != nil {
			m.addAlert(err.Error(), colorYellow)
			return m, nil
		}
		m.filter = &status
		return m, m.loadTasks
	case "/w":
		if c.id == 0 {
			m.startSession(timer.ModeWork, nil)
			return m, nil
		}
		switch m.engine.State() {
		case timer.StateRunning:
			m.addAlert("timer is already running, /k to reset", colorYellow)
			return m, nil
		case timer.StatePaused:
			m.addAlert("timer is paused, /g to resume or /k to reset", colorYellow)
			return m, nil
		}
		id := c.id
		return m, func() tea.Msg {
			timeout, cancel := m.newTimeout()
			defer cancel()
			if _, err := m.taskSvc.StartTask(timeout, id); err != nil {
				return ErrorMsg{
					err: err,
				}
			}
			return StartSessionMsg{
				mode:   timer.ModeWork,
				taskID: &id,
			}
		}
	case "/b":
		m.startSession(timer.ModeShortBreak, nil)
		return m, nil
	case "/l":
		m.startSession(timer.ModeLongBreak, nil)
		return m, nil
	case "/g":
		if m.engine.State() == timer.StatePaused {
			m.lastTick = m.now()
			m.engine.Start(m.engine.Mode(), nil)
			return m, nil
		}
		next := m.engine.NextMode()
		var taskID *int
		if next == timer.ModeWork {
			taskID = m.lastWorkTask
		}
		m.startSession(next, taskID)
		return m, nil
	case "/z":
		if m.engine.State() != timer.StateRunning {
			m.addAlert("timer is not running", colorYellow)
		}
		m.engine.Pause()
		return m, nil
	case "/k":
		m.engine.Reset()
		return m, nil
	case "/t":
		work, shortBreak, longBreak, err := parseDurations(c.arg)
		if err != nil {
			m.addAlert(err.Error(), colorYellow)
			return m, nil
		}
		conf := m.engine.Config()
		conf.Work, conf.ShortBreak, conf.LongBreak = work, shortBreak, longBreak
		return m, func() tea.Msg {
			timeout, cancel := m.newTimeout()
			defer cancel()
			if err := m.pomodoroSvc.SaveTimerConfig(timeout, conf); err != nil {
				return ErrorMsg{
					err: err,
				}
			}
			return ConfigMsg{
				conf: conf,
			}
		}
	case "/s":
		return m, m.loadStats
	case "/o":
		file := c.arg
		if file == "" {
			file = defaultExportFile(m.now())
		}
		return m, func() tea.Msg {
			timeout, cancel := m.newTimeout()
			defer cancel()
			if err := exportTo(timeout, m.pomodoroSvc, file); err != nil {
				return errorMsg("failed export to %s: %w", file, err)
			}
			return AlertMsg{
				alert: "exported data to " + file,
			}
		}
	case "/h":
		m.addAlert(commandHelp, colorYellow)
		return m, nil
	}
	return m, nil
}

func exportTo(ctx context.Context, pomodoroSvc svc.PomodoroSvc, file string) (err error) {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return pomodoroSvc.Export(ctx, f)
}

func (m model) renderFooter() string {
	if m.quitting {
		return ""
	}

	var footer strings.Builder
	footer.WriteString(faintStyle.Render(line(m.vp.Width)))
	footer.WriteRune('\n')
	footer.WriteString(m.renderTimer())
	footer.WriteString("\n")
	footer.WriteString(m.renderStats())
	footer.WriteString("\n\n")
	footer.WriteString(m.userinput.View())
	footer.WriteString("\n\n")

	if len(m.alerts) > 0 {
		footer.WriteString(strings.Join(m.alerts, "\n"))
		footer.WriteString("\n\n")
	} else {
		footer.WriteString(faintStyle.Render("(/h for help, ctrl+c to quit)"))
		footer.WriteRune('\n')
	}

	return footer.String()
}

func (m model) renderTimer() string {
	state := m.engine.State()
	if state == timer.StateIdle || state == timer.StateFinished {
		next := m.engine.NextMode()
		return fmt.Sprintf("%s %s %s",
			modeLabel(next),
			formatClock(m.engine.Config().Duration(next)),
			faintStyle.Render(fmt.Sprintf("%s, /g to start", state)),
		)
	}

	s := fmt.Sprintf("%s %s %s", modeLabel(m.engine.Mode()), formatClock(m.engine.Remaining()), state)
	if id := m.engine.TaskID(); id != nil {
		for _, t := range m.tasks {
			if t.ID == *id {
				s += activeStyle.Render(fmt.Sprintf("  #%d %s", t.ID, t.Title))
				break
			}
		}
	}
	return s
}

func (m model) renderStats() string {
	return faintStyle.Render(fmt.Sprintf("today: %d pomodoros, %s focus | all time: %s",
		m.stats.TodayCount, formatFocus(m.stats.TodayDuration), formatFocus(m.stats.AllTimeDuration)))
}

func (m model) renderTasks() string {
	if len(m.tasks) == 0 {
		if m.filter != nil {
			return faintStyle.Render(fmt.Sprintf("no %s tasks", *m.filter))
		}
		return faintStyle.Render("no tasks yet, type one to add it")
	}

	var activeID int
	if id := m.engine.TaskID(); id != nil && m.engine.State() != timer.StateIdle {
		activeID = *id
	}
	lines := make([]string, 0, len(m.tasks))
	for _, t := range m.tasks {
		lines = append(lines, formatTask(t, t.ID == activeID))
	}
	return strings.Join(lines, "\n")
}

func (m model) View() string {
	return lipgloss.JoinVertical(0, m.vp.View(), m.renderFooter())
}

func (m model) newTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.cmdTimeout)
}

func (m *model) addAlert(alert string, c color) {
	m.alerts = append(m.alerts, colorize(c, alert))
}

func (m *model) resizeViewport() {
	tasksHeight := lipgloss.Height(m.renderTasks())
	footerHeight := lipgloss.Height(m.renderFooter())
	m.vp.Height = max(0, min(tasksHeight, m.h-footerHeight))
	m.vp.GotoBottom()
}
