package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/timer"
)

type color = string

const (
	colorRed    color = "\033[31m"
	colorGreen  color = "\033[32m"
	colorYellow color = "\033[33m"
	colorCyan   color = "\033[36m"
	colorReset  color = "\033[0m"
	dash              = '─'
)

var (
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(false)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("221")).Bold(true)
	modeStyles  = map[timer.Mode]lipgloss.Style{
		timer.ModeWork:       lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		timer.ModeShortBreak: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		timer.ModeLongBreak:  lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
	}
	priorityColors = map[pomodo.TaskPriority]lipgloss.Color{
		pomodo.PriorityHigh:   lipgloss.Color("203"),
		pomodo.PriorityMedium: lipgloss.Color("221"),
		pomodo.PriorityLow:    lipgloss.Color("8"),
	}
)

func line(length int) string {
	var sb strings.Builder
	for range length {
		sb.WriteRune(dash)
	}
	return sb.String()
}

func colorize(c color, s string) string {
	return c + s + colorReset
}

func statusMarker(s pomodo.TaskStatus) string {
	switch s {
	case pomodo.StatusInProgress:
		return "[~]"
	case pomodo.StatusDone:
		return "[x]"
	default:
		return "[ ]"
	}
}

// formatTask renders one task line. The task the timer is running against is highlighted.
func formatTask(t pomodo.Task, active bool) string {
	priority := lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render(t.Priority.String())
	s := fmt.Sprintf("%s #%d %s (%s)", statusMarker(t.Status), t.ID, t.Title, priority)
	if t.Description != "" {
		s += faintStyle.Render(" - " + t.Description)
	}
	switch {
	case active:
		return activeStyle.Render("▶ ") + s
	case t.Status == pomodo.StatusDone:
		return "  " + faintStyle.Render(s)
	}
	return "  " + s
}

// formatClock renders d as mm:ss, rounding partial seconds up.
func formatClock(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// formatFocus renders seconds of focus time as "1h05m" or "25m".
func formatFocus(seconds int) string {
	d := time.Duration(seconds) * time.Second
	h, m := int(d.Hours()), int(d.Minutes())%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func modeLabel(m timer.Mode) string {
	return modeStyles[m].Render(strings.ToUpper(strings.ReplaceAll(m.String(), "_", " ")))
}
