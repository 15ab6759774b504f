package pomodo

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	LogLevel       string
	LogPath        string
	DevMode        bool
	WorkDuration   time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakEvery int
}

const (
	KeyDatabaseURL    = "POMODO_DB_URL"
	KeyLogLevel       = "POMODO_LOG_LEVEL"
	KeyLogPath        = "POMODO_LOG_PATH"
	KeyDevMode        = "POMODO_DEV_MODE"
	KeyWorkDuration   = "POMODO_WORK_DURATION"
	KeyShortBreak     = "POMODO_SHORT_BREAK"
	KeyLongBreak      = "POMODO_LONG_BREAK"
	KeyLongBreakEvery = "POMODO_LONG_BREAK_EVERY"
)

const (
	DefaultLogLevel       = "WARN"
	DefaultWorkDuration   = 25 * time.Minute
	DefaultShortBreak     = 5 * time.Minute
	DefaultLongBreak      = 15 * time.Minute
	DefaultLongBreakEvery = 4
)

var (
	userHome, _        = os.UserHomeDir()
	DefaultDatabaseURL = path.Join(userHome, ".pomodo", "pomodo.db")
	DefaultLogPath     = path.Join(userHome, ".pomodo", "pomodo.log")
)

// DefaultConfFile is pomodo.conf under the user's config directory.
func DefaultConfFile() string {
	cfgDir, _ := os.UserConfigDir()
	return path.Join(cfgDir, "pomodo", "pomodo.conf")
}

// LoadConfig resolves every key from the environment first, then confFile, then the defaults.
// A default conf file is written when confFile does not exist.
func LoadConfig(confFile string) (Config, error) {
	if _, err := os.Stat(confFile); err != nil {
		if err := writeDefaultConf(confFile); err != nil {
			return Config{}, fmt.Errorf("failed to create default conf file: %w", err)
		}
	}
	fromFile, err := godotenv.Read(confFile)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read conf file %s: %w", confFile, err)
	}
	get := func(key, def string) string {
		return coalesce(os.Getenv(key), fromFile[key], def)
	}

	conf := Config{
		DatabaseURL: get(KeyDatabaseURL, DefaultDatabaseURL),
		LogLevel:    get(KeyLogLevel, DefaultLogLevel),
		LogPath:     get(KeyLogPath, DefaultLogPath),
		DevMode:     get(KeyDevMode, "") != "",
	}
	if conf.WorkDuration, err = parseMinutes(KeyWorkDuration, get(KeyWorkDuration, ""), DefaultWorkDuration); err != nil {
		return Config{}, err
	}
	if conf.ShortBreak, err = parseMinutes(KeyShortBreak, get(KeyShortBreak, ""), DefaultShortBreak); err != nil {
		return Config{}, err
	}
	if conf.LongBreak, err = parseMinutes(KeyLongBreak, get(KeyLongBreak, ""), DefaultLongBreak); err != nil {
		return Config{}, err
	}
	conf.LongBreakEvery = DefaultLongBreakEvery
	if v := get(KeyLongBreakEvery, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: %w", KeyLongBreakEvery, v, ErrValidation)
		}
		conf.LongBreakEvery = n
	}

	if conf.DevMode {
		conf.LogLevel = "DEBUG"
		conf.DatabaseURL = path.Join(os.TempDir(), "pomodo-dev.db")
		conf.LogPath = path.Join(os.TempDir(), "pomodo-dev.log")
	}

	return conf, nil
}

func writeDefaultConf(confFile string) error {
	if err := os.MkdirAll(path.Dir(confFile), 0o744); err != nil {
		return err
	}
	return godotenv.Write(map[string]string{
		KeyDatabaseURL:  DefaultDatabaseURL,
		KeyLogLevel:     DefaultLogLevel,
		KeyLogPath:      DefaultLogPath,
		KeyWorkDuration: DefaultWorkDuration.String(),
		KeyShortBreak:   DefaultShortBreak.String(),
		KeyLongBreak:    DefaultLongBreak.String(),
	}, confFile)
}

// parseMinutes accepts a Go duration ("25m") or a bare number of minutes ("25").
func parseMinutes(key, v string, def time.Duration) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		n, nerr := strconv.Atoi(v)
		if nerr != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, v, ErrValidation)
		}
		d = time.Duration(n) * time.Minute
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s: %w", key, v, ErrValidation)
	}
	return d, nil
}

func coalesce(args ...string) string {
	for _, s := range args {
		if s != "" {
			return s
		}
	}
	return ""
}
