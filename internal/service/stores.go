package service

import (
	"context"

	"predman/internal/domain"
	"predman/internal/repository"
)

// The interfaces below are satisfied by the postgres repositories.

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, id string) ([]repository.MemberRemoval, error)
}

type projectStore interface {
	Create(ctx context.Context, ownerID string, np domain.NewProject) (*domain.ProjectInfo, error)
	GetInfo(ctx context.Context, id string) (*domain.ProjectInfo, error)
	ListJoined(ctx context.Context, userID string) ([]domain.Project, error)
	ListOwned(ctx context.Context, userID string) ([]domain.Project, error)
	ListIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, info *domain.ProjectInfo) error
	SavePrediction(ctx context.Context, id string, certainty float64, deadline domain.Date) error
	Delete(ctx context.Context, id string) error
}

type memberStore interface {
	Add(ctx context.Context, projectID, userID string) error
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
	Count(ctx context.Context, projectID string) (int, error)
	List(ctx context.Context, projectID string) ([]domain.User, error)
	SetOwner(ctx context.Context, projectID, userID string) error
	Remove(ctx context.Context, projectID, userID string) (repository.MemberRemoval, error)
}

type taskStore interface {
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, nt domain.NewTask) (*domain.Task, error)
	Update(ctx context.Context, taskID string, patch domain.TaskPatch) (*domain.Task, bool, error)
	Delete(ctx context.Context, ref domain.TaskRef) (*domain.Task, error)
}

type dependencyStore interface {
	Add(ctx context.Context, d domain.TaskDependency) error
	Remove(ctx context.Context, d domain.TaskDependency) error
	ListForTask(ctx context.Context, taskID string) ([]string, error)
	ListForProject(ctx context.Context, projectID string) ([]domain.TaskDependency, error)
}

type assignmentStore interface {
	Assign(ctx context.Context, a domain.TaskAssignment) error
	Unassign(ctx context.Context, a domain.TaskAssignment) error
	ListAssignees(ctx context.Context, taskID string) ([]domain.User, error)
	ListTasks(ctx context.Context, projectID, userID string) ([]domain.Task, error)
}

type statisticsStore interface {
	Save(ctx context.Context, s *domain.ProjectStatistics) error
	ListByProject(ctx context.Context, projectID string) ([]domain.ProjectStatistics, error)
}

type auditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByProject(ctx context.Context, projectID string, limit int) ([]*domain.AuditLog, error)
	GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

type boardCache interface {
	Get(ctx context.Context, projectID string) (domain.Board, bool)
	Set(ctx context.Context, projectID string, b domain.Board)
	Invalidate(ctx context.Context, projectID string)
}

// BoardPublisher fans board events out to live subscribers.
type BoardPublisher interface {
	Publish(ev domain.BoardEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.BoardEvent) {}
