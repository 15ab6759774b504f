package pomodo

import (
	"context"
)

type TaskRepo interface {
	GetTask(ctx context.Context, id int) (Task, error)
	ListTasks(ctx context.Context, status *TaskStatus) ([]Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error)
	UpdateTask(ctx context.Context, id int, update TaskUpdate) (Task, error)
	// DeleteTask also deletes the task's pomodoro records.
	DeleteTask(ctx context.Context, id int) (Task, error)
}
