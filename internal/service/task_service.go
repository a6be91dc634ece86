package service

import (
	"context"
	"fmt"

	"predman/internal/domain"
	"predman/internal/logger"
)

type TaskService struct {
	tasks       taskStore
	deps        dependencyStore
	assignments assignmentStore
	members     memberStore
	cache       boardCache
	events      BoardPublisher
}

func NewTaskService(tasks taskStore, deps dependencyStore, assignments assignmentStore, members memberStore, cache boardCache, events BoardPublisher) *TaskService {
	if events == nil {
		events = nopPublisher{}
	}
	return &TaskService{
		tasks:       tasks,
		deps:        deps,
		assignments: assignments,
		members:     members,
		cache:       cache,
		events:      events,
	}
}

// taskForMember loads a task and checks that userID may see its project.
func (s *TaskService) taskForMember(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.members, t.ProjectID, userID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) changed(ctx context.Context, ev domain.BoardEvent) {
	s.cache.Invalidate(ctx, ev.ProjectID)
	s.events.Publish(ev)
}

// Board returns the project's tasks ordered along their status chains.
func (s *TaskService) Board(ctx context.Context, userID, projectID string) (domain.Board, error) {
	if err := requireMember(ctx, s.members, projectID, userID); err != nil {
		return domain.Board{}, err
	}
	if b, ok := s.cache.Get(ctx, projectID); ok {
		return b, nil
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return domain.Board{}, err
	}
	b, orphans, err := domain.SortLinked(tasks)
	if err != nil {
		logger.Error("task order is corrupted", "project_id", projectID, "error", err)
		return domain.Board{}, err
	}
	if len(orphans) > 0 {
		logger.Warn("tasks unreachable from their column head", "project_id", projectID, "count", len(orphans))
	}

	s.cache.Set(ctx, projectID, b)
	return b, nil
}

// Info returns a task with its successor and dependencies.
func (s *TaskService) Info(ctx context.Context, userID, taskID string) (*domain.TaskInfo, error) {
	t, err := s.taskForMember(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	deps, err := s.deps.ListForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &domain.TaskInfo{Task: *t, Next: t.Next, Dependencies: deps}, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, nt domain.NewTask) (*domain.Task, error) {
	if err := requireMember(ctx, s.members, nt.ProjectID, userID); err != nil {
		return nil, err
	}
	t, err := s.tasks.Create(ctx, nt)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, domain.BoardEvent{Type: domain.EventTaskCreated, ProjectID: t.ProjectID, TaskID: t.ID, ActorID: userID, Data: t})
	return t, nil
}

// Update applies a partial update; see TaskRepository.Update for ordering.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, patch domain.TaskPatch) (t *domain.Task, err error) {
	if patch.NextUpdated {
		defer func() { TaskMoves.WithLabelValues(moveResult(err)).Inc() }()
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.taskForMember(ctx, userID, taskID); err != nil {
		return nil, err
	}

	t, moved, err := s.tasks.Update(ctx, taskID, patch)
	if err != nil {
		return nil, err
	}

	evType := domain.EventTaskUpdated
	if moved {
		evType = domain.EventTaskMoved
		logger.Debug("task moved", "task_id", t.ID, "status", t.Status, "next", t.Next)
	}
	s.changed(ctx, domain.BoardEvent{Type: evType, ProjectID: t.ProjectID, TaskID: t.ID, ActorID: userID, Data: t})
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID string, ref domain.TaskRef) error {
	if err := requireMember(ctx, s.members, ref.ProjectID, userID); err != nil {
		return err
	}
	t, err := s.tasks.Delete(ctx, ref)
	if err != nil {
		return err
	}
	s.changed(ctx, domain.BoardEvent{Type: domain.EventTaskDeleted, ProjectID: t.ProjectID, TaskID: t.ID, ActorID: userID})
	return nil
}

func (s *TaskService) AddDependency(ctx context.Context, userID string, d domain.TaskDependency) error {
	if d.TaskID == d.DependencyID {
		return domain.Forbidden("task cannot depend on itself")
	}
	t, err := s.taskForMember(ctx, userID, d.TaskID)
	if err != nil {
		return err
	}
	dep, err := s.tasks.GetByID(ctx, d.DependencyID)
	if err != nil {
		return err
	}
	if dep.ProjectID != t.ProjectID {
		return domain.Invalid("tasks belong to different projects")
	}
	return s.deps.Add(ctx, d)
}

func (s *TaskService) RemoveDependency(ctx context.Context, userID string, d domain.TaskDependency) error {
	if _, err := s.taskForMember(ctx, userID, d.TaskID); err != nil {
		return err
	}
	return s.deps.Remove(ctx, d)
}

func (s *TaskService) Dependencies(ctx context.Context, userID, taskID string) ([]string, error) {
	if _, err := s.taskForMember(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.deps.ListForTask(ctx, taskID)
}

// taskInProject checks membership and that the referenced task lives in the project.
func (s *TaskService) taskInProject(ctx context.Context, userID string, ref domain.TaskRef) error {
	t, err := s.taskForMember(ctx, userID, ref.TaskID)
	if err != nil {
		return err
	}
	if t.ProjectID != ref.ProjectID {
		return domain.NotFound("task not found in project")
	}
	return nil
}

func (s *TaskService) Assignees(ctx context.Context, userID string, ref domain.TaskRef) ([]domain.User, error) {
	if err := s.taskInProject(ctx, userID, ref); err != nil {
		return nil, err
	}
	return s.assignments.ListAssignees(ctx, ref.TaskID)
}

// Assign puts assigneeID on the task; the assignee must be a project member.
func (s *TaskService) Assign(ctx context.Context, userID, assigneeID string, ref domain.TaskRef) error {
	if err := s.taskInProject(ctx, userID, ref); err != nil {
		return err
	}
	if err := requireMember(ctx, s.members, ref.ProjectID, assigneeID); err != nil {
		return fmt.Errorf("assignee: %w", err)
	}
	return s.assignments.Assign(ctx, domain.TaskAssignment{TaskID: ref.TaskID, UserID: assigneeID})
}

func (s *TaskService) Unassign(ctx context.Context, userID, assigneeID string, ref domain.TaskRef) error {
	if err := s.taskInProject(ctx, userID, ref); err != nil {
		return err
	}
	return s.assignments.Unassign(ctx, domain.TaskAssignment{TaskID: ref.TaskID, UserID: assigneeID})
}

// AssignedTasks lists the tasks of a project assigned to memberID.
func (s *TaskService) AssignedTasks(ctx context.Context, userID, memberID, projectID string) ([]domain.Task, error) {
	if err := requireMember(ctx, s.members, projectID, userID); err != nil {
		return nil, err
	}
	return s.assignments.ListTasks(ctx, projectID, memberID)
}
