package service

import (
	"context"
	"sync"

	"predman/internal/domain"
	"predman/internal/repository"
)

type fakeMembers struct {
	byProject map[string]map[string]bool
}

func newFakeMembers(pairs ...[2]string) *fakeMembers {
	m := &fakeMembers{byProject: map[string]map[string]bool{}}
	for _, p := range pairs {
		if m.byProject[p[0]] == nil {
			m.byProject[p[0]] = map[string]bool{}
		}
		m.byProject[p[0]][p[1]] = true
	}
	return m
}

func (m *fakeMembers) Add(ctx context.Context, projectID, userID string) error {
	if m.byProject[projectID][userID] {
		return domain.Conflict("member already exists")
	}
	if m.byProject[projectID] == nil {
		m.byProject[projectID] = map[string]bool{}
	}
	m.byProject[projectID][userID] = true
	return nil
}

func (m *fakeMembers) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	return m.byProject[projectID][userID], nil
}

func (m *fakeMembers) Count(ctx context.Context, projectID string) (int, error) {
	return len(m.byProject[projectID]), nil
}

func (m *fakeMembers) List(ctx context.Context, projectID string) ([]domain.User, error) {
	var out []domain.User
	for id := range m.byProject[projectID] {
		out = append(out, domain.User{ID: id})
	}
	return out, nil
}

func (m *fakeMembers) SetOwner(ctx context.Context, projectID, userID string) error {
	if !m.byProject[projectID][userID] {
		return domain.Forbidden("new owner must be a project member")
	}
	return nil
}

func (m *fakeMembers) Remove(ctx context.Context, projectID, userID string) (repository.MemberRemoval, error) {
	delete(m.byProject[projectID], userID)
	return repository.MemberRemoval{ProjectID: projectID, ProjectDeleted: len(m.byProject[projectID]) == 0}, nil
}

type fakeTasks struct {
	tasks   map[string]domain.Task
	updated []domain.TaskPatch
	moved   bool
	listed  int
}

func (f *fakeTasks) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	f.listed++
	var out []domain.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.NotFound("task not found")
	}
	return &t, nil
}

func (f *fakeTasks) Create(ctx context.Context, nt domain.NewTask) (*domain.Task, error) {
	t := domain.Task{ID: "new", ProjectID: nt.ProjectID, Name: nt.Name, Status: domain.StatusPlanned}
	f.tasks[t.ID] = t
	return &t, nil
}

func (f *fakeTasks) Update(ctx context.Context, taskID string, patch domain.TaskPatch) (*domain.Task, bool, error) {
	f.updated = append(f.updated, patch)
	t := f.tasks[taskID]
	patch.Apply(&t)
	return &t, f.moved, nil
}

func (f *fakeTasks) Delete(ctx context.Context, ref domain.TaskRef) (*domain.Task, error) {
	t, ok := f.tasks[ref.TaskID]
	if !ok || t.ProjectID != ref.ProjectID {
		return nil, domain.NotFound("task not found")
	}
	delete(f.tasks, ref.TaskID)
	return &t, nil
}

type fakeDeps struct {
	edges []domain.TaskDependency
}

func (f *fakeDeps) Add(ctx context.Context, d domain.TaskDependency) error {
	f.edges = append(f.edges, d)
	return nil
}

func (f *fakeDeps) Remove(ctx context.Context, d domain.TaskDependency) error {
	for i, e := range f.edges {
		if e == d {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("dependency not found")
}

func (f *fakeDeps) ListForTask(ctx context.Context, taskID string) ([]string, error) {
	out := []string{}
	for _, e := range f.edges {
		if e.TaskID == taskID {
			out = append(out, e.DependencyID)
		}
	}
	return out, nil
}

func (f *fakeDeps) ListForProject(ctx context.Context, projectID string) ([]domain.TaskDependency, error) {
	return f.edges, nil
}

type mapCache struct {
	boards      map[string]domain.Board
	invalidated []string
}

func newMapCache() *mapCache { return &mapCache{boards: map[string]domain.Board{}} }

func (c *mapCache) Get(ctx context.Context, projectID string) (domain.Board, bool) {
	b, ok := c.boards[projectID]
	return b, ok
}

func (c *mapCache) Set(ctx context.Context, projectID string, b domain.Board) {
	c.boards[projectID] = b
}

func (c *mapCache) Invalidate(ctx context.Context, projectID string) {
	delete(c.boards, projectID)
	c.invalidated = append(c.invalidated, projectID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BoardEvent
}

func (p *recordingPublisher) Publish(ev domain.BoardEvent) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

type fakeProjects struct {
	infos     map[string]*domain.ProjectInfo
	predicted map[string]domain.Date
}

func (f *fakeProjects) Create(ctx context.Context, ownerID string, np domain.NewProject) (*domain.ProjectInfo, error) {
	info := &domain.ProjectInfo{Project: domain.Project{ID: "p-new", Name: np.Name, OwnerID: ownerID}, DueDate: np.DueDate}
	f.infos[info.ID] = info
	return info, nil
}

func (f *fakeProjects) GetInfo(ctx context.Context, id string) (*domain.ProjectInfo, error) {
	info, ok := f.infos[id]
	if !ok {
		return nil, domain.NotFound("project not found")
	}
	cp := *info
	return &cp, nil
}

func (f *fakeProjects) ListJoined(ctx context.Context, userID string) ([]domain.Project, error) {
	return nil, nil
}

func (f *fakeProjects) ListOwned(ctx context.Context, userID string) ([]domain.Project, error) {
	return nil, nil
}

func (f *fakeProjects) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range f.infos {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeProjects) Update(ctx context.Context, info *domain.ProjectInfo) error {
	cp := *info
	f.infos[info.ID] = &cp
	return nil
}

func (f *fakeProjects) SavePrediction(ctx context.Context, id string, certainty float64, deadline domain.Date) error {
	if f.predicted == nil {
		f.predicted = map[string]domain.Date{}
	}
	f.predicted[id] = deadline
	return nil
}

func (f *fakeProjects) Delete(ctx context.Context, id string) error {
	delete(f.infos, id)
	return nil
}

type fakeStats struct {
	saved []domain.ProjectStatistics
}

func (f *fakeStats) Save(ctx context.Context, s *domain.ProjectStatistics) error {
	f.saved = append(f.saved, *s)
	return nil
}

func (f *fakeStats) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectStatistics, error) {
	return f.saved, nil
}

type stubPredictor struct {
	prediction domain.Prediction
	err        error
	gotDays    int
}

func (p *stubPredictor) Predict(ctx context.Context, projectID string, estimatedDays int) (domain.Prediction, error) {
	p.gotDays = estimatedDays
	return p.prediction, p.err
}

type memAudit struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (a *memAudit) Create(ctx context.Context, log *domain.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

func (a *memAudit) GetByProject(ctx context.Context, projectID string, limit int) ([]*domain.AuditLog, error) {
	return a.filter(limit, func(l *domain.AuditLog) bool { return l.ProjectID != nil && *l.ProjectID == projectID }), nil
}

func (a *memAudit) GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return a.filter(limit, func(l *domain.AuditLog) bool { return l.UserID == userID }), nil
}

// filter returns matching entries newest first.
func (a *memAudit) filter(limit int, keep func(*domain.AuditLog) bool) []*domain.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []*domain.AuditLog{}
	for i := len(a.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(a.logs[i]) {
			out = append(out, a.logs[i])
		}
	}
	return out
}
