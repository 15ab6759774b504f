// Package svc holds the operations the front ends call. It validates input, delegates to the
// repositories and keeps the timer and the pomodoro log in step.
package svc

import (
	"context"
	"fmt"

	"github.com/benjamonnguyen/pomodo"
)

type TaskSvc interface {
	CreateTask(ctx context.Context, req pomodo.CreateTaskRequest) (pomodo.Task, error)
	GetTask(ctx context.Context, id int) (pomodo.Task, error)
	UpdateTask(ctx context.Context, id int, update pomodo.TaskUpdate) (pomodo.Task, error)
	DeleteTask(ctx context.Context, id int) (pomodo.Task, error)
	ListTasks(ctx context.Context) ([]pomodo.Task, error)
	FilterByStatus(ctx context.Context, status pomodo.TaskStatus) ([]pomodo.Task, error)

	StartTask(ctx context.Context, id int) (pomodo.Task, error)
	CompleteTask(ctx context.Context, id int) (pomodo.Task, error)
	ReopenTask(ctx context.Context, id int) (pomodo.Task, error)
}

// impl
type taskSvc struct {
	repo pomodo.TaskRepo
	l    pomodo.Logger
}

func NewTaskSvc(taskRepo pomodo.TaskRepo, logger pomodo.Logger) TaskSvc {
	return &taskSvc{
		repo: taskRepo,
		l:    logger,
	}
}

func (s *taskSvc) CreateTask(ctx context.Context, req pomodo.CreateTaskRequest) (pomodo.Task, error) {
	if req.Priority != 0 && !req.Priority.Valid() {
		return pomodo.Task{}, fmt.Errorf("invalid priority %d: %w", req.Priority, pomodo.ErrValidation)
	}
	t, err := s.repo.CreateTask(ctx, req)
	if err != nil {
		return pomodo.Task{}, err
	}
	s.l.Info("created task", "id", t.ID, "title", t.Title)
	return t, nil
}

func (s *taskSvc) GetTask(ctx context.Context, id int) (pomodo.Task, error) {
	return s.repo.GetTask(ctx, id)
}

func (s *taskSvc) UpdateTask(ctx context.Context, id int, update pomodo.TaskUpdate) (pomodo.Task, error) {
	if err := update.Validate(); err != nil {
		return pomodo.Task{}, err
	}
	return s.repo.UpdateTask(ctx, id, update)
}

func (s *taskSvc) DeleteTask(ctx context.Context, id int) (pomodo.Task, error) {
	t, err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		return pomodo.Task{}, err
	}
	s.l.Info("deleted task", "id", t.ID)
	return t, nil
}

func (s *taskSvc) ListTasks(ctx context.Context) ([]pomodo.Task, error) {
	return s.repo.ListTasks(ctx, nil)
}

func (s *taskSvc) FilterByStatus(ctx context.Context, status pomodo.TaskStatus) ([]pomodo.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %d: %w", status, pomodo.ErrValidation)
	}
	return s.repo.ListTasks(ctx, &status)
}

func (s *taskSvc) StartTask(ctx context.Context, id int) (pomodo.Task, error) {
	return s.setStatus(ctx, id, pomodo.StatusInProgress)
}

func (s *taskSvc) CompleteTask(ctx context.Context, id int) (pomodo.Task, error) {
	return s.setStatus(ctx, id, pomodo.StatusDone)
}

// ReopenTask moves a task back to Todo from any status.
func (s *taskSvc) ReopenTask(ctx context.Context, id int) (pomodo.Task, error) {
	return s.setStatus(ctx, id, pomodo.StatusTodo)
}

func (s *taskSvc) setStatus(ctx context.Context, id int, status pomodo.TaskStatus) (pomodo.Task, error) {
	t, err := s.repo.UpdateTask(ctx, id, pomodo.TaskUpdate{Status: &status})
	if err != nil {
		return pomodo.Task{}, err
	}
	s.l.Debug("changed task status", "id", id, "status", status)
	return t, nil
}
