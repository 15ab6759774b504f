package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/charmlog"
	"github.com/benjamonnguyen/pomodo/sqlite"
	"github.com/benjamonnguyen/pomodo/svc"
	"github.com/benjamonnguyen/pomodo/timer"
)

var logger pomodo.Logger

func main() {
	// conf
	confFile := os.Getenv("POMODO_CONF")
	if confFile == "" {
		confFile = pomodo.DefaultConfFile()
	}
	conf, err := pomodo.LoadConfig(confFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	var logFile io.Closer
	logger, logFile, err = charmlog.OpenFile(conf.LogPath, conf.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logFile.Close() //nolint:errcheck
	logger.Info("loaded config", "config", conf)

	// db
	db, err := sqlite.Open(conf.DatabaseURL)
	if err != nil {
		logger.Error("failed database open", "error", err)
		os.Exit(1)
	}
	defer db.Close() //nolint:errcheck
	if err := db.Migrate(); err != nil {
		logger.Error("failed migration", "error", err)
		os.Exit(1)
	}

	transactor, dbGetter := txStdLib.NewTransactor(db.DB(), txStdLib.NestedTransactionsSavepoints)

	// repos
	taskRepo := sqlite.NewTaskRepo(transactor, dbGetter, logger)
	pomodoroRepo := sqlite.NewPomodoroRepo(transactor, dbGetter, logger)
	settingsRepo := sqlite.NewSettingsRepo(dbGetter, logger)

	// svcs
	taskSvc := svc.NewTaskSvc(taskRepo, logger)
	pomodoroSvc := svc.NewPomodoroSvc(pomodoroRepo, taskRepo, settingsRepo, logger)

	// handle initial args
	timeout, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	opts, err := parseProgramArgs(timeout, os.Args[1:], taskSvc, pomodoroSvc)
	if err != nil {
		fmt.Println(colorize(colorRed, err.Error()))
		os.Exit(1)
	}
	if opts.showHelp {
		fmt.Println(colorize(colorYellow, programUsage))
		return
	}
	if opts.shouldExit {
		return
	}

	// timer
	timerConf, err := pomodoroSvc.TimerConfig(timeout, timer.Config{
		Work:           conf.WorkDuration,
		ShortBreak:     conf.ShortBreak,
		LongBreak:      conf.LongBreak,
		LongBreakEvery: conf.LongBreakEvery,
	})
	if err != nil {
		logger.Error("failed to load timer settings", "error", err)
		os.Exit(1)
	}
	engine := timer.New(timerConf)
	engine.OnComplete(func(ev timer.CompletionEvent) {
		logger.Info("session finished", "session", ev.SessionID, "mode", ev.Mode, "duration", ev.ActualDuration)
	})

	// start program
	fmt.Println(colorize(colorYellow, logo))
	fmt.Printf("\nEnter \"/h\" for help\n\n")

	userinput := textinput.New()
	userinput.Focus()
	userinput.CharLimit = 280
	userinput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))

	m := model{
		l:           logger,
		taskSvc:     taskSvc,
		pomodoroSvc: pomodoroSvc,
		engine:      engine,
		now:         time.Now,
		lastTick:    time.Now(),
		cmdTimeout:  3 * time.Second,
		userinput:   userinput,
		vp:          viewport.New(0, 0),
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		logger.Error(err.Error())
	}
}

type options struct {
	showHelp   bool
	shouldExit bool
}

func parseProgramArgs(ctx context.Context, args []string, taskSvc svc.TaskSvc, pomodoroSvc svc.PomodoroSvc) (options, error) {
	var opts options

	if len(args) == 0 {
		return opts, nil
	}

	cmd := args[0]
	arg := strings.Join(args[1:], " ")

	logger.Debug("parsed program args", "cmd", cmd, "arg", arg)
	switch cmd {
	case "/a":
		if arg == "" {
			opts.showHelp = true
			return opts, nil
		}
		req, err := parseNewTask(arg)
		if err != nil {
			return options{}, err
		}
		t, err := taskSvc.CreateTask(ctx, req)
		if err != nil {
			return options{}, err
		}
		fmt.Printf(`Added #%d "%s"`+"\n", t.ID, t.Title)
		opts.shouldExit = true
		return opts, nil
	case "/export":
		file := arg
		if file == "" {
			file = defaultExportFile(time.Now())
		}
		if err := exportTo(ctx, pomodoroSvc, file); err != nil {
			return options{}, fmt.Errorf("failed export to %s: %w", file, err)
		}
		fmt.Printf("Exported data to %s\n", file)
		opts.shouldExit = true
		return opts, nil
	default:
		opts.showHelp = true
		return opts, nil
	}
}
