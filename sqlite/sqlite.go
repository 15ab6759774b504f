package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/benjamonnguyen/pomodo"
)

type scannable interface {
	Scan(...any) error
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now as the source of created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func generateParameters(n int) string {
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("(?")
	for range n - 1 {
		sb.WriteString(",?")
	}

	sb.WriteString(")")
	return sb.String()
}

// timestamps are stored as unix milliseconds
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// normalizeTime drops precision the database cannot hold so returned values equal what is read back.
func normalizeTime(t time.Time) time.Time {
	return fromMillis(toMillis(t))
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, pomodo.ErrStorage, err)
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
