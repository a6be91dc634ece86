// Package board keeps the client-side copy of a project's task board and
// performs board mutations against the content service.
//
// The store holds a single board value that is replaced wholesale on every
// transition. Readers get deep copies; subscribers are called with a fresh
// copy after each commit.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"predman/internal/domain"
	"predman/internal/logger"
)

// ErrNotLoaded is returned by operations issued before Load succeeded.
var ErrNotLoaded = errors.New("board is not loaded")

// TaskAPI is the part of the content service the board talks to.
type TaskAPI interface {
	FetchBoard(ctx context.Context, projectID string) (domain.Board, error)
	CreateTask(ctx context.Context, t domain.NewTask) (domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, ref domain.TaskRef) error
}

// Store owns the board of one project.
type Store struct {
	api       TaskAPI
	projectID string

	mu      sync.RWMutex
	board   *domain.Board
	subs    map[int]func(domain.Board)
	nextSub int

	// serializes operations that talk to the server, so a rollback can never
	// discard the result of another operation
	opMu sync.Mutex
}

// NewStore creates an empty store for projectID.
func NewStore(api TaskAPI, projectID string) *Store {
	return &Store{
		api:       api,
		projectID: projectID,
		subs:      make(map[int]func(domain.Board)),
	}
}

// ProjectID returns the project this store belongs to.
func (s *Store) ProjectID() string {
	return s.projectID
}

// Get returns a copy of the current board. ok is false until the first Load.
func (s *Store) Get() (b domain.Board, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.board == nil {
		return domain.Board{}, false
	}
	return s.board.Clone(), true
}

// Subscribe registers fn to be called after every commit. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(domain.Board)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Mutate applies fn to a copy of the board and commits the result.
// It is a purely local change: nothing is sent to the server. It waits for
// any operation in flight, so a rollback never discards it.
func (s *Store) Mutate(fn func(b *domain.Board)) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.mutate(fn)
}

// mutate is Mutate for callers already holding opMu.
func (s *Store) mutate(fn func(b *domain.Board)) error {
	cur, ok := s.Get()
	if !ok {
		return ErrNotLoaded
	}
	fn(&cur)
	s.commit(cur)
	return nil
}

// Load fetches the whole board and replaces the local copy.
func (s *Store) Load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	b, err := s.api.FetchBoard(ctx, s.projectID)
	if err != nil {
		return fmt.Errorf("fetch board: %w", err)
	}
	for _, bk := range domain.Buckets {
		if b.Column(bk) == nil {
			b.SetColumn(bk, []domain.Task{})
		}
	}
	s.commit(b)
	return nil
}

// commit replaces the stored board and notifies subscribers.
func (s *Store) commit(b domain.Board) {
	s.mu.Lock()
	s.board = &b
	subs := make([]func(domain.Board), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(b.Clone())
	}
}

// AddTask creates a task on the server and appends it to the planned column.
func (s *Store) AddTask(ctx context.Context, name, description string, storyPoints float64) (domain.Task, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if _, ok := s.Get(); !ok {
		return domain.Task{}, ErrNotLoaded
	}

	created, err := s.api.CreateTask(ctx, domain.NewTask{
		ProjectID:   s.projectID,
		Name:        name,
		Description: description,
		StoryPoints: storyPoints,
	})
	if err != nil {
		logger.Error("create task failed", "project_id", s.projectID, "error", err)
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}

	err = s.mutate(func(b *domain.Board) {
		b.Planned = append(b.Planned, created)
	})
	return created, err
}

// EditTask updates task fields on the server and then locally. A status
// change moves the task to the end of the new column, which is what the
// server does with it too. Reordering goes through Reorder.
func (s *Store) EditTask(ctx context.Context, taskID string, patch domain.TaskPatch) error {
	if patch.NextUpdated {
		return domain.Invalid("use Reorder to change task order")
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur, ok := s.Get()
	if !ok {
		return ErrNotLoaded
	}
	if _, _, found := cur.Find(taskID); !found {
		return domain.NotFound("task is not on the board")
	}

	if _, err := s.api.UpdateTask(ctx, taskID, patch); err != nil {
		logger.Error("edit task failed", "task_id", taskID, "error", err)
		return fmt.Errorf("edit task: %w", err)
	}

	return s.mutate(func(b *domain.Board) {
		bk, i, found := b.Find(taskID)
		if !found {
			return
		}
		col := b.Column(bk)
		t := col[i]
		patch.Apply(&t)
		target := domain.BucketOf(t.Status)
		if target == bk {
			col[i] = t
			return
		}
		b.SetColumn(bk, append(col[:i:i], col[i+1:]...))
		b.SetColumn(target, append(b.Column(target), t))
	})
}

// DeleteTask removes a task on the server and then from its column.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if _, ok := s.Get(); !ok {
		return ErrNotLoaded
	}

	if err := s.api.DeleteTask(ctx, domain.TaskRef{ProjectID: s.projectID, TaskID: taskID}); err != nil {
		logger.Error("delete task failed", "task_id", taskID, "error", err)
		return fmt.Errorf("delete task: %w", err)
	}

	return s.mutate(func(b *domain.Board) {
		bk, i, found := b.Find(taskID)
		if !found {
			return
		}
		col := b.Column(bk)
		b.SetColumn(bk, append(col[:i:i], col[i+1:]...))
	})
}
