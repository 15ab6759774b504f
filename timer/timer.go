// Package timer implements the pomodoro countdown.
//
// An Engine tracks one session at a time and is driven by its owner's event loop: the owner calls Tick
// with the time elapsed since the previous tick. Engines are not safe for concurrent use.
package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Mode int

const (
	ModeWork Mode = iota
	ModeShortBreak
	ModeLongBreak
)

func (m Mode) Valid() bool {
	return m >= ModeWork && m <= ModeLongBreak
}

func (m Mode) String() string {
	switch m {
	case ModeWork:
		return "work"
	case ModeShortBreak:
		return "short_break"
	case ModeLongBreak:
		return "long_break"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "work", "w", "focus":
		return ModeWork, nil
	case "short_break", "short", "s", "break", "b":
		return ModeShortBreak, nil
	case "long_break", "long", "l":
		return ModeLongBreak, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

type Config struct {
	Work       time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
	// LongBreakEvery is how many work sessions earn a long break.
	LongBreakEvery int
}

func DefaultConfig() Config {
	return Config{
		Work:           25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakEvery: 4,
	}
}

// withDefaults replaces non-positive values with the defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Work <= 0 {
		c.Work = def.Work
	}
	if c.ShortBreak <= 0 {
		c.ShortBreak = def.ShortBreak
	}
	if c.LongBreak <= 0 {
		c.LongBreak = def.LongBreak
	}
	if c.LongBreakEvery <= 0 {
		c.LongBreakEvery = def.LongBreakEvery
	}
	return c
}

func (c Config) Duration(m Mode) time.Duration {
	switch m {
	case ModeShortBreak:
		return c.ShortBreak
	case ModeLongBreak:
		return c.LongBreak
	default:
		return c.Work
	}
}

// CompletionEvent is emitted once per session that counts down to zero.
type CompletionEvent struct {
	SessionID      uuid.UUID
	Mode           Mode
	TaskID         *int
	ActualDuration time.Duration
	StartedAt      time.Time
	EndedAt        time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

type Engine struct {
	conf     Config
	now      func() time.Time
	handlers []func(CompletionEvent)

	state     State
	mode      Mode
	taskID    *int
	sessionID uuid.UUID
	remaining time.Duration
	elapsed   time.Duration
	startedAt time.Time

	completedWork int
	lastCompleted *Mode
}

func New(conf Config, opts ...Option) *Engine {
	e := &Engine{
		conf: conf.withDefaults(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnComplete registers h to be called synchronously from Tick when a session finishes.
func (e *Engine) OnComplete(h func(CompletionEvent)) {
	e.handlers = append(e.handlers, h)
}

// SetConfig takes effect from the next fresh session.
func (e *Engine) SetConfig(conf Config) {
	e.conf = conf.withDefaults()
}

func (e *Engine) Config() Config {
	return e.conf
}

// Start begins a session of the given mode when idle or finished and resumes the frozen session when
// paused, ignoring mode and taskID. It does nothing while running or for an unknown mode.
func (e *Engine) Start(mode Mode, taskID *int) {
	switch e.state {
	case StateRunning:
		return
	case StatePaused:
		e.state = StateRunning
		return
	}
	if !mode.Valid() {
		return
	}

	e.state = StateRunning
	e.mode = mode
	e.taskID = copyID(taskID)
	e.sessionID = uuid.New()
	e.remaining = e.conf.Duration(mode)
	e.elapsed = 0
	e.startedAt = e.now()
}

func (e *Engine) Pause() {
	if e.state == StateRunning {
		e.state = StatePaused
	}
}

// Reset discards the current session. Nothing is emitted.
func (e *Engine) Reset() {
	e.state = StateIdle
	e.taskID = nil
	e.sessionID = uuid.Nil
	e.remaining = 0
	e.elapsed = 0
	e.startedAt = time.Time{}
}

// Tick counts down by elapsed while running. When the countdown reaches zero the engine finishes,
// notifies the handlers and returns the event with true.
func (e *Engine) Tick(elapsed time.Duration) (CompletionEvent, bool) {
	if e.state != StateRunning || elapsed <= 0 {
		return CompletionEvent{}, false
	}

	elapsed = min(elapsed, e.remaining)
	e.remaining -= elapsed
	e.elapsed += elapsed
	if e.remaining > 0 {
		return CompletionEvent{}, false
	}

	e.state = StateFinished
	endedAt := e.now()
	if endedAt.Before(e.startedAt) {
		endedAt = e.startedAt
	}
	ev := CompletionEvent{
		SessionID:      e.sessionID,
		Mode:           e.mode,
		TaskID:         copyID(e.taskID),
		ActualDuration: e.elapsed,
		StartedAt:      e.startedAt,
		EndedAt:        endedAt,
	}

	if e.mode == ModeWork {
		e.completedWork++
	}
	mode := e.mode
	e.lastCompleted = &mode

	for _, h := range e.handlers {
		h(ev)
	}
	return ev, true
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) TaskID() *int {
	return copyID(e.taskID)
}

func (e *Engine) SessionID() uuid.UUID {
	return e.sessionID
}

// Remaining is the full duration of the current mode while idle.
func (e *Engine) Remaining() time.Duration {
	if e.state == StateIdle {
		return e.conf.Duration(e.mode)
	}
	return e.remaining
}

// CompletedWork counts finished work sessions since the engine was created.
func (e *Engine) CompletedWork() int {
	return e.completedWork
}

// NextMode suggests what to run after the last finished session: a break after work, with a long
// break after every LongBreakEvery-th work session, and work after a break.
func (e *Engine) NextMode() Mode {
	if e.lastCompleted == nil || *e.lastCompleted != ModeWork {
		return ModeWork
	}
	if e.completedWork%e.conf.LongBreakEvery == 0 {
		return ModeLongBreak
	}
	return ModeShortBreak
}

func copyID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
