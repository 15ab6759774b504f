package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Thiht/transactor"
	txStdLib "github.com/Thiht/transactor/stdlib"

	"github.com/benjamonnguyen/pomodo"
)

const (
	SelectAllTasks = "SELECT id, title, description, priority, status, created_at, updated_at FROM tasks"
)

type taskEntity struct {
	ID          int
	Title       string
	Description sql.NullString
	Priority    int
	Status      int
	CreatedAt   int64
	UpdatedAt   int64
}

// taskRepo
type taskRepo struct {
	transactor transactor.Transactor
	dbGetter   txStdLib.DBGetter
	l          pomodo.Logger
	opts       options
}

var _ pomodo.TaskRepo = (*taskRepo)(nil)

func NewTaskRepo(transactor transactor.Transactor, dbGetter txStdLib.DBGetter, logger pomodo.Logger, opts ...Option) pomodo.TaskRepo {
	return &taskRepo{
		transactor: transactor,
		dbGetter:   dbGetter,
		l:          logger,
		opts:       newOptions(opts),
	}
}

func (r *taskRepo) GetTask(ctx context.Context, id int) (pomodo.Task, error) {
	db := r.dbGetter(ctx)
	row := db.QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE id=?", SelectAllTasks), id,
	)

	task, err := extractTask(row)
	if errors.Is(err, pomodo.ErrNotFound) {
		return pomodo.Task{}, fmt.Errorf("task %d: %w", id, err)
	}
	return task, err
}

func (r *taskRepo) ListTasks(ctx context.Context, status *pomodo.TaskStatus) ([]pomodo.Task, error) {
	query := SelectAllTasks
	var args []any
	if status != nil {
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status %d: %w", *status, pomodo.ErrValidation)
		}
		query += " WHERE status = ?"
		args = append(args, int(*status))
	}
	query += " ORDER BY created_at ASC, id ASC"

	db := r.dbGetter(ctx)
	r.l.Debug("listing tasks", "query", query, "args", args)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list tasks", err)
	}

	return extractTasks(rows)
}

func (r *taskRepo) CreateTask(ctx context.Context, req pomodo.CreateTaskRequest) (pomodo.Task, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return pomodo.Task{}, err
	}

	now := normalizeTime(r.opts.now())
	task := pomodo.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      pomodo.StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e := mapToTaskEntity(task)

	args := []any{
		e.Title,
		e.Description,
		e.Priority,
		e.Status,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO tasks (title, description, priority, status, created_at, updated_at) VALUES " + generateParameters(len(args))
	r.l.Debug("creating task", "query", query, "args", args)
	res, err := r.dbGetter(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return pomodo.Task{}, storageError("create task", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return pomodo.Task{}, storageError("create task", err)
	}
	task.ID = int(id)

	return task, nil
}

func (r *taskRepo) UpdateTask(ctx context.Context, id int, update pomodo.TaskUpdate) (pomodo.Task, error) {
	if err := update.Validate(); err != nil {
		return pomodo.Task{}, err
	}

	var updated pomodo.Task
	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := r.GetTask(ctx, id)
		if err != nil {
			return err
		}

		updated = update.Apply(existing)
		updated.UpdatedAt = normalizeTime(r.opts.now())
		// updated_at must move forward even when the clock has not
		if !updated.UpdatedAt.After(existing.UpdatedAt) {
			updated.UpdatedAt = fromMillis(toMillis(existing.UpdatedAt) + 1)
		}
		e := mapToTaskEntity(updated)

		query := "UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, updated_at = ? WHERE id = ?"
		args := []any{
			e.Title,
			e.Description,
			e.Priority,
			e.Status,
			e.UpdatedAt,
			e.ID,
		}
		r.l.Debug("updating task", "query", query, "args", args)
		if _, err := r.dbGetter(ctx).ExecContext(ctx, query, args...); err != nil {
			return storageError("update task", err)
		}
		return nil
	})
	if err != nil {
		return pomodo.Task{}, err
	}

	return updated, nil
}

func (r *taskRepo) DeleteTask(ctx context.Context, id int) (pomodo.Task, error) {
	var deleted pomodo.Task
	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := r.GetTask(ctx, id)
		if err != nil {
			return err
		}

		db := r.dbGetter(ctx)
		// cascade delete pomodoros
		query := "DELETE FROM pomodoros WHERE task_id = ?"
		r.l.Debug("deleting task pomodoros", "query", query, "id", id)
		if _, err := db.ExecContext(ctx, query, id); err != nil {
			return storageError("delete task pomodoros", err)
		}

		query = "DELETE FROM tasks WHERE id = ?"
		r.l.Debug("deleting task", "query", query, "id", id)
		if _, err := db.ExecContext(ctx, query, id); err != nil {
			return storageError("delete task", err)
		}

		deleted = existing
		return nil
	})
	if err != nil {
		return pomodo.Task{}, err
	}

	return deleted, nil
}

func extractTasks(rows *sql.Rows) ([]pomodo.Task, error) {
	defer rows.Close() //nolint:errcheck

	tasks := []pomodo.Task{}
	for rows.Next() {
		task, err := extractTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate tasks", err)
	}
	return tasks, nil
}

func extractTask(s scannable) (pomodo.Task, error) {
	var e taskEntity
	if err := s.Scan(&e.ID, &e.Title, &e.Description, &e.Priority, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomodo.Task{}, pomodo.ErrNotFound
		}
		return pomodo.Task{}, storageError("scan task", err)
	}

	return mapToTask(e), nil
}

func mapToTaskEntity(task pomodo.Task) taskEntity {
	var e taskEntity
	e.ID = task.ID
	e.Title = task.Title
	e.Priority = int(task.Priority)
	e.Status = int(task.Status)
	e.CreatedAt = toMillis(task.CreatedAt)
	e.UpdatedAt = toMillis(task.UpdatedAt)

	if task.Description != "" {
		e.Description = sql.NullString{
			Valid:  true,
			String: task.Description,
		}
	}
	return e
}

func mapToTask(e taskEntity) pomodo.Task {
	return pomodo.Task{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description.String,
		Priority:    pomodo.TaskPriority(e.Priority),
		Status:      pomodo.TaskStatus(e.Status),
		CreatedAt:   fromMillis(e.CreatedAt),
		UpdatedAt:   fromMillis(e.UpdatedAt),
	}
}
