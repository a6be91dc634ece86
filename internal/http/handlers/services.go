package handlers

import (
	"context"

	"predman/internal/domain"
	"predman/internal/service"
)

// The interfaces below are implemented by the types in internal/service.

type UserService interface {
	Register(ctx context.Context, meta service.RequestMeta, req domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, meta service.RequestMeta, req domain.LoginRequest) (*domain.AuthResponse, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Info(ctx context.Context, id string) (*domain.UserProjects, error)
	AuditLog(ctx context.Context, id string) ([]*domain.AuditLog, error)
	Delete(ctx context.Context, meta service.RequestMeta, id string) error
}

type ProjectService interface {
	Create(ctx context.Context, meta service.RequestMeta, userID string, np domain.NewProject) (*domain.ProjectInfo, error)
	ListJoined(ctx context.Context, userID string) ([]domain.Project, error)
	ListOwned(ctx context.Context, userID string) ([]domain.Project, error)
	Get(ctx context.Context, userID, projectID string) (*domain.Project, error)
	Info(ctx context.Context, userID, projectID string) (*domain.ProjectInfo, error)
	Update(ctx context.Context, userID, projectID string, patch domain.ProjectPatch) (*domain.ProjectInfo, error)
	Delete(ctx context.Context, meta service.RequestMeta, userID, projectID string) error
	AuditLog(ctx context.Context, userID, projectID string) ([]*domain.AuditLog, error)
}

type MemberService interface {
	Add(ctx context.Context, meta service.RequestMeta, userID string, req domain.MemberByEmail) (*domain.User, error)
	Remove(ctx context.Context, meta service.RequestMeta, userID string, req domain.MemberRef) error
	List(ctx context.Context, userID, projectID string) ([]domain.User, error)
	ChangeOwner(ctx context.Context, meta service.RequestMeta, userID string, req domain.MemberByEmail) (*domain.Project, error)
}

type TaskService interface {
	Board(ctx context.Context, userID, projectID string) (domain.Board, error)
	Info(ctx context.Context, userID, taskID string) (*domain.TaskInfo, error)
	Create(ctx context.Context, userID string, nt domain.NewTask) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, userID string, ref domain.TaskRef) error
	AddDependency(ctx context.Context, userID string, d domain.TaskDependency) error
	RemoveDependency(ctx context.Context, userID string, d domain.TaskDependency) error
	Dependencies(ctx context.Context, userID, taskID string) ([]string, error)
	Assignees(ctx context.Context, userID string, ref domain.TaskRef) ([]domain.User, error)
	Assign(ctx context.Context, userID, assigneeID string, ref domain.TaskRef) error
	Unassign(ctx context.Context, userID, assigneeID string, ref domain.TaskRef) error
	AssignedTasks(ctx context.Context, userID, memberID, projectID string) ([]domain.Task, error)
}

type StatisticsService interface {
	History(ctx context.Context, userID, projectID string) ([]domain.ProjectStatistics, error)
}
