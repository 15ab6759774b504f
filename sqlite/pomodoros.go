package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Thiht/transactor"
	txStdLib "github.com/Thiht/transactor/stdlib"

	"github.com/benjamonnguyen/pomodo"
)

const (
	SelectAllPomodoros = "SELECT id, task_id, duration, start_time, end_time FROM pomodoros"
)

type pomodoroEntity struct {
	ID        int
	TaskID    sql.NullInt64
	Duration  int
	StartTime int64
	EndTime   int64
}

// pomodoroRepo
type pomodoroRepo struct {
	transactor transactor.Transactor
	dbGetter   txStdLib.DBGetter
	l          pomodo.Logger
}

var _ pomodo.PomodoroRepo = (*pomodoroRepo)(nil)

func NewPomodoroRepo(transactor transactor.Transactor, dbGetter txStdLib.DBGetter, logger pomodo.Logger) pomodo.PomodoroRepo {
	return &pomodoroRepo{
		transactor: transactor,
		dbGetter:   dbGetter,
		l:          logger,
	}
}

func (r *pomodoroRepo) RecordPomodoro(ctx context.Context, req pomodo.RecordPomodoroRequest) (pomodo.PomodoroRecord, error) {
	if err := req.Validate(); err != nil {
		return pomodo.PomodoroRecord{}, err
	}

	record := pomodo.PomodoroRecord{
		TaskID:    req.TaskID,
		Duration:  req.Duration,
		StartTime: normalizeTime(req.StartTime),
		EndTime:   normalizeTime(req.EndTime),
	}
	e := mapToPomodoroEntity(record)

	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.dbGetter(ctx)
		if record.TaskID != nil {
			var exists int
			err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE id = ?", *record.TaskID).Scan(&exists)
			if err != nil {
				return storageError("record pomodoro", err)
			}
			if exists == 0 {
				return fmt.Errorf("task %d: %w", *record.TaskID, pomodo.ErrNotFound)
			}
		}

		args := []any{
			e.TaskID,
			e.Duration,
			e.StartTime,
			e.EndTime,
		}
		query := "INSERT INTO pomodoros (task_id, duration, start_time, end_time) VALUES " + generateParameters(len(args))
		r.l.Debug("recording pomodoro", "query", query, "args", args)
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("task %d: %w", *record.TaskID, pomodo.ErrNotFound)
			}
			return storageError("record pomodoro", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return storageError("record pomodoro", err)
		}
		record.ID = int(id)
		return nil
	})
	if err != nil {
		return pomodo.PomodoroRecord{}, err
	}

	return record, nil
}

func (r *pomodoroRepo) ListPomodoros(ctx context.Context) ([]pomodo.PomodoroRecord, error) {
	query := SelectAllPomodoros + " ORDER BY start_time DESC, id DESC"
	r.l.Debug("listing pomodoros", "query", query)
	rows, err := r.dbGetter(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, storageError("list pomodoros", err)
	}

	return extractPomodoros(rows)
}

func (r *pomodoroRepo) ListPomodorosByTask(ctx context.Context, taskID int) ([]pomodo.PomodoroRecord, error) {
	query := SelectAllPomodoros + " WHERE task_id = ? ORDER BY start_time DESC, id DESC"
	r.l.Debug("listing task pomodoros", "query", query, "taskID", taskID)
	rows, err := r.dbGetter(ctx).QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, storageError("list task pomodoros", err)
	}

	return extractPomodoros(rows)
}

func (r *pomodoroRepo) DeletePomodoro(ctx context.Context, id int) (pomodo.PomodoroRecord, error) {
	var deleted pomodo.PomodoroRecord
	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.dbGetter(ctx)
		row := db.QueryRowContext(ctx, SelectAllPomodoros+" WHERE id = ?", id)
		existing, err := extractPomodoro(row)
		if err != nil {
			if errors.Is(err, pomodo.ErrNotFound) {
				return fmt.Errorf("pomodoro %d: %w", id, err)
			}
			return err
		}

		query := "DELETE FROM pomodoros WHERE id = ?"
		r.l.Debug("deleting pomodoro", "query", query, "id", id)
		if _, err := db.ExecContext(ctx, query, id); err != nil {
			return storageError("delete pomodoro", err)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return pomodo.PomodoroRecord{}, err
	}

	return deleted, nil
}

func (r *pomodoroRepo) DailyStats(ctx context.Context, date time.Time) (pomodo.DailyStats, error) {
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := "SELECT COUNT(*), COALESCE(SUM(duration), 0) FROM pomodoros WHERE start_time >= ? AND start_time < ?"
	args := []any{toMillis(dayStart), toMillis(dayEnd)}
	r.l.Debug("daily stats", "query", query, "args", args)

	var stats pomodo.DailyStats
	if err := r.dbGetter(ctx).QueryRowContext(ctx, query, args...).Scan(&stats.Count, &stats.TotalDuration); err != nil {
		return pomodo.DailyStats{}, storageError("daily stats", err)
	}
	return stats, nil
}

func (r *pomodoroRepo) TotalDuration(ctx context.Context) (int, error) {
	var total int
	query := "SELECT COALESCE(SUM(duration), 0) FROM pomodoros"
	if err := r.dbGetter(ctx).QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, storageError("total duration", err)
	}
	return total, nil
}

func extractPomodoros(rows *sql.Rows) ([]pomodo.PomodoroRecord, error) {
	defer rows.Close() //nolint:errcheck

	records := []pomodo.PomodoroRecord{}
	for rows.Next() {
		record, err := extractPomodoro(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate pomodoros", err)
	}
	return records, nil
}

func extractPomodoro(s scannable) (pomodo.PomodoroRecord, error) {
	var e pomodoroEntity
	if err := s.Scan(&e.ID, &e.TaskID, &e.Duration, &e.StartTime, &e.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomodo.PomodoroRecord{}, pomodo.ErrNotFound
		}
		return pomodo.PomodoroRecord{}, storageError("scan pomodoro", err)
	}

	return mapToPomodoroRecord(e), nil
}

func mapToPomodoroEntity(record pomodo.PomodoroRecord) pomodoroEntity {
	var e pomodoroEntity
	e.ID = record.ID
	e.Duration = record.Duration
	e.StartTime = toMillis(record.StartTime)
	e.EndTime = toMillis(record.EndTime)

	// Handle TaskID as nullable int64
	if record.TaskID != nil {
		e.TaskID = sql.NullInt64{
			Valid: true,
			Int64: int64(*record.TaskID),
		}
	}
	return e
}

func mapToPomodoroRecord(e pomodoroEntity) pomodo.PomodoroRecord {
	// Handle TaskID as *int
	var taskID *int
	if e.TaskID.Valid {
		val := int(e.TaskID.Int64)
		taskID = &val
	}

	return pomodo.PomodoroRecord{
		ID:        e.ID,
		TaskID:    taskID,
		Duration:  e.Duration,
		StartTime: fromMillis(e.StartTime),
		EndTime:   fromMillis(e.EndTime),
	}
}
