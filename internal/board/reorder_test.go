package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"predman/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type updateCall struct {
	taskID string
	patch  domain.TaskPatch
	ctxErr error
}

// fakeAPI records update calls and lets tests decide how each one ends.
type fakeAPI struct {
	mu      sync.Mutex
	board   domain.Board
	updates []updateCall
	fail    error

	// when set, UpdateTask blocks until a value is sent
	gate    chan error
	entered chan struct{}
}

func (f *fakeAPI) FetchBoard(ctx context.Context, projectID string) (domain.Board, error) {
	return f.board.Clone(), nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, t domain.NewTask) (domain.Task, error) {
	if f.fail != nil {
		return domain.Task{}, f.fail
	}
	return domain.Task{ID: "new", ProjectID: t.ProjectID, Name: t.Name, StoryPoints: t.StoryPoints, Status: domain.StatusPlanned}, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	var err error
	if f.gate != nil {
		err = <-f.gate
	} else {
		err = f.fail
	}
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{taskID: taskID, patch: patch, ctxErr: ctx.Err()})
	f.mu.Unlock()
	return domain.Task{ID: taskID}, err
}

func (f *fakeAPI) DeleteTask(ctx context.Context, ref domain.TaskRef) error {
	return f.fail
}

func (f *fakeAPI) calls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

func tk(id string, status domain.TaskStatus) domain.Task {
	return domain.Task{ID: id, Name: "task " + id, Status: status}
}

func sampleBoard() domain.Board {
	b := domain.NewBoard()
	b.Planned = []domain.Task{tk("A", domain.StatusPlanned), tk("B", domain.StatusPlanned), tk("C", domain.StatusPlanned)}
	b.InProgress = []domain.Task{tk("X", domain.StatusInProgress)}
	return b
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func loaded(t *testing.T, api *fakeAPI) *Store {
	t.Helper()
	s := NewStore(api, "p1")
	require.NoError(t, s.Load(context.Background()))
	return s
}

func pos(b domain.Bucket, i int) Position { return Position{Bucket: b, Index: i} }

func TestReorderNilDestinationIsNoop(t *testing.T) {
	api := &fakeAPI{board: sampleBoard()}
	s := loaded(t, api)
	before := s.board

	err := s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), nil)
	require.NoError(t, err)

	assert.Same(t, before, s.board)
	assert.Empty(t, api.calls())
}

func TestReorderCrossColumnToEmptyColumn(t *testing.T) {
	b := domain.NewBoard()
	b.Planned = []domain.Task{tk("A", domain.StatusPlanned), tk("B", domain.StatusPlanned)}
	api := &fakeAPI{board: b}
	s := loaded(t, api)

	dst := pos(domain.BucketInProgress, 0)
	require.NoError(t, s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst))

	got, _ := s.Get()
	assert.Equal(t, []string{"B"}, ids(got.Planned))
	assert.Equal(t, []string{"A"}, ids(got.InProgress))
	assert.Equal(t, domain.StatusInProgress, got.InProgress[0].Status)

	calls := api.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "A", calls[0].taskID)
	require.NotNil(t, calls[0].patch.Status)
	assert.Equal(t, domain.StatusInProgress, *calls[0].patch.Status)
	assert.True(t, calls[0].patch.NextUpdated)
	assert.Nil(t, calls[0].patch.Next)
}

func TestReorderSameColumnDown(t *testing.T) {
	api := &fakeAPI{board: sampleBoard()}
	s := loaded(t, api)

	dst := pos(domain.BucketPlanned, 1)
	require.NoError(t, s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst))

	got, _ := s.Get()
	assert.Equal(t, []string{"B", "A", "C"}, ids(got.Planned))

	calls := api.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "A", calls[0].taskID)
	assert.Nil(t, calls[0].patch.Status)
	require.NotNil(t, calls[0].patch.Next)
	assert.Equal(t, "C", *calls[0].patch.Next)
}

func TestReorderSameColumnUp(t *testing.T) {
	api := &fakeAPI{board: sampleBoard()}
	s := loaded(t, api)

	dst := pos(domain.BucketPlanned, 0)
	require.NoError(t, s.Reorder(context.Background(), pos(domain.BucketPlanned, 2), &dst))

	got, _ := s.Get()
	assert.Equal(t, []string{"C", "A", "B"}, ids(got.Planned))
	assert.Equal(t, []string{"X"}, ids(got.InProgress))

	calls := api.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "C", calls[0].taskID)
	assert.Nil(t, calls[0].patch.Status)
	assert.True(t, calls[0].patch.NextUpdated)
	require.NotNil(t, calls[0].patch.Next)
	assert.Equal(t, "A", *calls[0].patch.Next)
}

func TestReorderToTailSendsExplicitNull(t *testing.T) {
	api := &fakeAPI{board: sampleBoard()}
	s := loaded(t, api)

	dst := pos(domain.BucketPlanned, 2)
	require.NoError(t, s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst))

	got, _ := s.Get()
	assert.Equal(t, []string{"B", "C", "A"}, ids(got.Planned))

	calls := api.calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].patch.NextUpdated)
	assert.Nil(t, calls[0].patch.Next)
}

func TestReorderSameSlotStillReportsSuccessor(t *testing.T) {
	api := &fakeAPI{board: sampleBoard()}
	s := loaded(t, api)

	dst := pos(domain.BucketPlanned, 1)
	require.NoError(t, s.Reorder(context.Background(), pos(domain.BucketPlanned, 1), &dst))

	got, _ := s.Get()
	assert.Equal(t, []string{"A", "B", "C"}, ids(got.Planned))
	calls := api.calls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].patch.Next)
	assert.Equal(t, "C", *calls[0].patch.Next)
}

func TestReorderRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{board: sampleBoard(), fail: errors.New("500 Internal Server Error")}
	s := loaded(t, api)
	snapshot, _ := s.Get()

	dst := pos(domain.BucketPlanned, 1)
	err := s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.fail)

	got, _ := s.Get()
	assert.Equal(t, snapshot, got)
	assert.Equal(t, []string{"A", "B", "C"}, ids(got.Planned))
	assert.Len(t, api.calls(), 1)
}

func TestReorderRollbackRestoresEveryColumn(t *testing.T) {
	api := &fakeAPI{board: sampleBoard(), fail: errors.New("conflict")}
	s := loaded(t, api)
	snapshot, _ := s.Get()

	dst := pos(domain.BucketCompleted, 0)
	require.Error(t, s.Reorder(context.Background(), pos(domain.BucketInProgress, 0), &dst))

	got, _ := s.Get()
	assert.Equal(t, snapshot, got)
	assert.Equal(t, domain.StatusInProgress, got.InProgress[0].Status)
}

func TestReorderPublishesOptimisticStateBeforeServerAnswers(t *testing.T) {
	api := &fakeAPI{board: sampleBoard(), gate: make(chan error), entered: make(chan struct{}, 1)}
	s := loaded(t, api)

	var (
		mu   sync.Mutex
		seen [][]string
	)
	unsubscribe := s.Subscribe(func(b domain.Board) {
		mu.Lock()
		seen = append(seen, ids(b.Planned))
		mu.Unlock()
	})
	defer unsubscribe()

	done := make(chan error, 1)
	dst := pos(domain.BucketPlanned, 2)
	go func() { done <- s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst) }()

	<-api.entered
	optimistic, _ := s.Get()
	assert.Equal(t, []string{"B", "C", "A"}, ids(optimistic.Planned))

	api.gate <- errors.New("boom")
	require.Error(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{{"B", "C", "A"}, {"A", "B", "C"}}, seen)
}

func TestReorderIsNotCancelledWithCaller(t *testing.T) {
	api := &fakeAPI{board: sampleBoard(), gate: make(chan error), entered: make(chan struct{}, 1)}
	s := loaded(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	dst := pos(domain.BucketInProgress, 1)
	go func() { done <- s.Reorder(ctx, pos(domain.BucketPlanned, 0), &dst) }()

	<-api.entered
	cancel()
	api.gate <- nil
	require.NoError(t, <-done)

	calls := api.calls()
	require.Len(t, calls, 1)
	assert.NoError(t, calls[0].ctxErr)

	got, _ := s.Get()
	assert.Equal(t, []string{"X", "A"}, ids(got.InProgress))
}

func TestReordersAreSerialized(t *testing.T) {
	api := &fakeAPI{board: sampleBoard(), gate: make(chan error), entered: make(chan struct{}, 2)}
	s := loaded(t, api)

	first := make(chan error, 1)
	second := make(chan error, 1)

	dst1 := pos(domain.BucketPlanned, 2)
	go func() { first <- s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst1) }()
	<-api.entered

	dst2 := pos(domain.BucketInProgress, 0)
	go func() { second <- s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst2) }()

	select {
	case <-api.entered:
		t.Fatal("second reorder reached the server while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	// first move fails and is rolled back before the second one starts
	api.gate <- errors.New("rejected")
	require.Error(t, <-first)

	<-api.entered
	api.gate <- nil
	require.NoError(t, <-second)

	got, _ := s.Get()
	assert.Equal(t, []string{"B", "C"}, ids(got.Planned))
	assert.Equal(t, []string{"A", "X"}, ids(got.InProgress))

	calls := api.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "A", calls[0].taskID)
	assert.Equal(t, "A", calls[1].taskID)
	require.NotNil(t, calls[1].patch.Next)
	assert.Equal(t, "X", *calls[1].patch.Next)
}

func TestReorderRejectsInvalidPositions(t *testing.T) {
	api := &fakeAPI{board: sampleBoard()}
	s := loaded(t, api)
	snapshot, _ := s.Get()

	cases := []struct {
		name     string
		src, dst Position
	}{
		{"source out of range", pos(domain.BucketCompleted, 0), pos(domain.BucketPlanned, 0)},
		{"destination past end", pos(domain.BucketPlanned, 0), pos(domain.BucketInProgress, 2)},
		{"negative destination", pos(domain.BucketPlanned, 0), pos(domain.BucketPlanned, -1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dst := tc.dst
			err := s.Reorder(context.Background(), tc.src, &dst)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}

	dst := pos(domain.BucketPlanned, 0)
	err := s.Reorder(context.Background(), Position{Bucket: "backlog"}, &dst)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, _ := s.Get()
	assert.Equal(t, snapshot, got)
	assert.Empty(t, api.calls())
}

func TestReorderBeforeLoad(t *testing.T) {
	s := NewStore(&fakeAPI{}, "p1")
	dst := pos(domain.BucketPlanned, 0)
	assert.ErrorIs(t, s.Reorder(context.Background(), pos(domain.BucketPlanned, 0), &dst), ErrNotLoaded)
}

func TestSpliceLeavesInputUntouched(t *testing.T) {
	in := sampleBoard()
	_, _, _, err := Splice(in, pos(domain.BucketPlanned, 0), pos(domain.BucketInProgress, 1))
	require.NoError(t, err)
	assert.Equal(t, sampleBoard(), in)
}

func TestSplicePreservesTaskCount(t *testing.T) {
	in := sampleBoard()
	for _, src := range domain.Buckets {
		for si := range in.Column(src) {
			for _, dst := range domain.Buckets {
				limit := len(in.Column(dst))
				if src != dst {
					limit++
				}
				for di := 0; di < limit; di++ {
					out, moved, _, err := Splice(in, pos(src, si), pos(dst, di))
					require.NoError(t, err)
					assert.Equal(t, in.Len(), out.Len())
					assert.Equal(t, moved.ID, out.Column(dst)[di].ID)
				}
			}
		}
	}
}
