package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomodo"
)

func TestParseCommand(t *testing.T) {
	for input, want := range map[string]command{
		"Write report":         {name: "/a", arg: "Write report"},
		"/a Write report !h":   {name: "/a", arg: "Write report !h"},
		"/c 3":                 {name: "/c", id: 3},
		"/x #12":               {name: "/x", id: 12},
		"/e 4 Rewrite report":  {name: "/e", id: 4, arg: "Rewrite report"},
		"/i 4  quarterly data": {name: "/i", id: 4, arg: "quarterly data"},
		"/w":                   {name: "/w"},
		"/w 2":                 {name: "/w", id: 2},
		"/f":                   {name: "/f"},
		"/f done":              {name: "/f", arg: "done"},
		"/t 50 10 30":          {name: "/t", arg: "50 10 30"},
		"/o out.json":          {name: "/o", arg: "out.json"},
	} {
		got, err := parseCommand(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParseCommand_Usage(t *testing.T) {
	for _, input := range []string{"/c", "/c x", "/c -1", "/e 3", "/a", "/w soon", "/t"} {
		_, err := parseCommand(input)
		assert.ErrorContains(t, err, "usage:", input)
	}

	_, err := parseCommand("/nope")
	assert.ErrorContains(t, err, "unknown command")
}

func TestParseNewTask(t *testing.T) {
	req, err := parseNewTask("Write report !h")
	require.NoError(t, err)
	assert.Equal(t, pomodo.CreateTaskRequest{Title: "Write report", Priority: pomodo.PriorityHigh}, req)

	req, err = parseNewTask("Buy milk")
	require.NoError(t, err)
	assert.Equal(t, pomodo.CreateTaskRequest{Title: "Buy milk"}, req)

	_, err = parseNewTask("Something !urgent")
	require.ErrorIs(t, err, pomodo.ErrValidation)
}

func TestParseDurations(t *testing.T) {
	work, shortBreak, longBreak, err := parseDurations("50 10 30")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Minute, work)
	assert.Equal(t, 10*time.Minute, shortBreak)
	assert.Equal(t, 30*time.Minute, longBreak)

	_, _, _, err = parseDurations("50 10")
	assert.Error(t, err)
	_, _, _, err = parseDurations("50 0 30")
	assert.ErrorIs(t, err, pomodo.ErrValidation)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "25:00", formatClock(25*time.Minute))
	assert.Equal(t, "00:01", formatClock(300*time.Millisecond))
	assert.Equal(t, "00:00", formatClock(0))
	assert.Equal(t, "25m", formatFocus(1500))
	assert.Equal(t, "1h05m", formatFocus(3900))
	assert.Equal(t, "pomodoro_export_20260314.json", defaultExportFile(time.Date(2026, 3, 14, 23, 0, 0, 0, time.Local)))
}
