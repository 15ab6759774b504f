package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benjamonnguyen/pomodo"
)

type command struct {
	name string
	// id is 0 when the command takes no task id or it was omitted
	id  int
	arg string
}

var usages = map[string]string{
	"/a": "/a <task> [!h|!m|!l]",
	"/e": "/e <id> <title>",
	"/i": "/i <id> <description>",
	"/p": "/p <id> <high|medium|low>",
	"/c": "/c <id>",
	"/r": "/r <id>",
	"/x": "/x <id>",
	"/w": "/w [id]",
	"/b": "/b",
	"/l": "/l",
	"/g": "/g",
	"/z": "/z",
	"/k": "/k",
	"/f": "/f [todo|doing|done]",
	"/o": "/o [file]",
	"/t": "/t <work> <short_break> <long_break>",
	"/s": "/s",
	"/h": "/h",
}

var (
	idRequired  = map[string]bool{"/e": true, "/i": true, "/p": true, "/c": true, "/r": true, "/x": true}
	argRequired = map[string]bool{"/a": true, "/e": true, "/i": true, "/p": true, "/t": true}
)

// parseCommand splits "/name [id] [arg]". Input without a leading slash is shorthand for /a.
func parseCommand(input string) (command, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return command{name: "/a", arg: input}, nil
	}

	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)
	usage, ok := usages[name]
	if !ok {
		return command{}, fmt.Errorf("unknown command %s, enter /h for help", name)
	}
	cmd := command{name: name, arg: rest}

	if idRequired[name] || name == "/w" {
		idStr, arg, _ := strings.Cut(rest, " ")
		if idStr != "" {
			id, err := strconv.Atoi(strings.TrimPrefix(idStr, "#"))
			if err != nil || id <= 0 {
				return command{}, fmt.Errorf("usage: %s", usage)
			}
			cmd.id = id
		}
		cmd.arg = strings.TrimSpace(arg)
	}

	if (idRequired[name] && cmd.id == 0) || (argRequired[name] && cmd.arg == "") {
		return command{}, fmt.Errorf("usage: %s", usage)
	}
	return cmd, nil
}

// parseNewTask reads a trailing "!h", "!m" or "!l" as the priority.
func parseNewTask(arg string) (pomodo.CreateTaskRequest, error) {
	req := pomodo.CreateTaskRequest{Title: arg}
	if i := strings.LastIndex(arg, " !"); i >= 0 {
		p, err := pomodo.ParsePriority(arg[i+2:])
		if err != nil {
			return pomodo.CreateTaskRequest{}, err
		}
		req.Title = arg[:i]
		req.Priority = p
	}
	return req, nil
}

// parseDurations reads three positive whole minutes.
func parseDurations(arg string) (work, shortBreak, longBreak time.Duration, err error) {
	fields := strings.Fields(arg)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("usage: %s", usages["/t"])
	}
	var mins [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			return 0, 0, 0, fmt.Errorf("durations are whole minutes, got %q: %w", f, pomodo.ErrValidation)
		}
		mins[i] = n
	}
	return time.Duration(mins[0]) * time.Minute,
		time.Duration(mins[1]) * time.Minute,
		time.Duration(mins[2]) * time.Minute,
		nil
}

func defaultExportFile(now time.Time) string {
	return fmt.Sprintf("pomodoro_export_%s.json", now.Format("20060102"))
}
