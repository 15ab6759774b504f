package main

import (
	"fmt"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/timer"
)

type TickMsg struct{}

type TasksMsg struct {
	tasks []pomodo.Task
	alert string
}

type StatsMsg struct {
	stats pomodo.Stats
}

// StartSessionMsg asks the model to start the timer once the task it runs against is in progress.
type StartSessionMsg struct {
	mode   timer.Mode
	taskID *int
}

type CompletionMsg struct {
	ev  timer.CompletionEvent
	err error
}

type ConfigMsg struct {
	conf timer.Config
}

type AlertMsg struct {
	alert string
}

type ErrorMsg struct {
	err error
}

func errorMsg(format string, args ...any) ErrorMsg {
	return ErrorMsg{
		err: fmt.Errorf(format, args...),
	}
}
