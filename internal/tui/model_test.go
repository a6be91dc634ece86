package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"predman/internal/board"
	"predman/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	mu      sync.Mutex
	board   domain.Board
	fail    error
	patches []domain.TaskPatch
	fetches int
}

func (a *stubAPI) FetchBoard(context.Context, string) (domain.Board, error) {
	a.mu.Lock()
	a.fetches++
	a.mu.Unlock()
	return a.board.Clone(), nil
}

func (a *stubAPI) CreateTask(_ context.Context, t domain.NewTask) (domain.Task, error) {
	if a.fail != nil {
		return domain.Task{}, a.fail
	}
	return domain.Task{ID: "new", ProjectID: t.ProjectID, Name: t.Name, Status: domain.StatusPlanned}, nil
}

func (a *stubAPI) UpdateTask(_ context.Context, _ string, p domain.TaskPatch) (domain.Task, error) {
	a.mu.Lock()
	a.patches = append(a.patches, p)
	a.mu.Unlock()
	return domain.Task{}, a.fail
}

func (a *stubAPI) DeleteTask(context.Context, domain.TaskRef) error { return a.fail }

func task(id string, s domain.TaskStatus) domain.Task {
	return domain.Task{ID: id, Name: "task " + id, Status: s}
}

func newModel(t *testing.T, api *stubAPI) *Model {
	t.Helper()
	api.board = domain.Board{
		Planned:    []domain.Task{task("A", domain.StatusPlanned), task("B", domain.StatusPlanned)},
		InProgress: []domain.Task{task("X", domain.StatusInProgress)},
		Completed:  []domain.Task{},
	}
	store := board.NewStore(api, "p1")
	require.NoError(t, store.Load(context.Background()))
	m := New(context.Background(), store, "demo")
	t.Cleanup(m.Close)
	return m
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestCursorStaysInsideColumns(t *testing.T) {
	m := newModel(t, &stubAPI{})

	press(m, "down", "down", "down")
	assert.Equal(t, board.Position{Bucket: domain.BucketPlanned, Index: 1}, m.cursor)

	press(m, "right")
	assert.Equal(t, board.Position{Bucket: domain.BucketInProgress, Index: 0}, m.cursor)

	press(m, "right", "right", "up")
	assert.Equal(t, board.Position{Bucket: domain.BucketCompleted, Index: 0}, m.cursor)
}

func TestGrabMoveDropReorders(t *testing.T) {
	api := &stubAPI{}
	m := newModel(t, api)

	press(m, " ", "right", "down")
	require.NotNil(t, m.grabbed)
	assert.Equal(t, board.Position{Bucket: domain.BucketInProgress, Index: 1}, m.target)
	assert.Contains(t, m.View(), "moving from planned[0] to inprogress[1]")

	cmd := press(m, " ")
	require.NotNil(t, cmd)
	assert.Nil(t, m.grabbed)
	m.Update(cmd())

	assert.Equal(t, []string{"B"}, ids(m.board.Planned))
	assert.Equal(t, []string{"X", "A"}, ids(m.board.InProgress))
	require.Len(t, api.patches, 1)
	assert.True(t, api.patches[0].NextUpdated)
	assert.Nil(t, api.patches[0].Next)
	assert.Equal(t, "moved to inprogress", m.status)
}

func TestEscapeCancelsWithoutRequest(t *testing.T) {
	api := &stubAPI{}
	m := newModel(t, api)

	press(m, " ", "right")
	cmd := press(m, "esc")

	assert.Nil(t, cmd)
	assert.Nil(t, m.grabbed)
	assert.Empty(t, api.patches)
	assert.Equal(t, []string{"A", "B"}, ids(m.board.Planned))
}

func TestRejectedMoveShowsRestoredBoard(t *testing.T) {
	api := &stubAPI{fail: domain.Conflict("next task is in another column")}
	m := newModel(t, api)

	press(m, " ", "down")
	cmd := press(m, " ")
	m.Update(cmd())

	// the store pushed both the optimistic board and the rollback
	select {
	case <-m.changes:
	default:
		t.Fatal("expected a board change notification")
	}
	m.Update(boardChangedMsg{})

	assert.Equal(t, []string{"A", "B"}, ids(m.board.Planned))
	assert.Equal(t, board.Position{Bucket: domain.BucketPlanned, Index: 0}, m.cursor)
	assert.Contains(t, m.errMsg, "press r to reload")
}

func TestAddTask(t *testing.T) {
	m := newModel(t, &stubAPI{})

	press(m, "a")
	require.True(t, m.adding)
	press(m, "w", "r", "i", "t", "e")
	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.False(t, m.adding)
	assert.Equal(t, []string{"A", "B", "new"}, ids(m.board.Planned))
	assert.Equal(t, "task added", m.status)
}

func TestDeleteFailureKeepsTask(t *testing.T) {
	m := newModel(t, &stubAPI{fail: errors.New("unavailable")})

	cmd := press(m, "x")
	m.Update(cmd())

	assert.Equal(t, []string{"A", "B"}, ids(m.board.Planned))
	assert.True(t, strings.HasPrefix(m.errMsg, "deleted"))
}

func TestRefreshWaitsForGrabToEnd(t *testing.T) {
	m := newModel(t, &stubAPI{})

	press(m, " ")
	_, cmd := m.Update(RefreshMsg{})
	assert.Nil(t, cmd)
	assert.NotNil(t, m.grabbed)

	cmd = press(m, "esc")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	m.Update(cmd())
	assert.False(t, m.busy)

	_, cmd = m.Update(RefreshMsg{})
	assert.NotNil(t, cmd)
}

func TestRefreshDuringMoveRunsAfterIt(t *testing.T) {
	api := &stubAPI{}
	m := newModel(t, api)
	fetched := api.fetches

	press(m, " ", "right")
	move := press(m, " ")
	require.NotNil(t, move)

	// another member changed the board while the move was in flight
	_, cmd := m.Update(RefreshMsg{})
	assert.Nil(t, cmd)

	_, reload := m.Update(move())
	require.NotNil(t, reload)
	assert.True(t, m.busy)

	api.board.Completed = []domain.Task{task("Z", domain.StatusCompleted)}
	_, cmd = m.Update(reload())
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, fetched+1, api.fetches)
	assert.Equal(t, []string{"Z"}, ids(m.board.Completed))
}

func TestRefreshAfterMoveWithoutEventsDoesNothing(t *testing.T) {
	m := newModel(t, &stubAPI{})

	press(m, " ", "right")
	move := press(m, " ")
	_, cmd := m.Update(move())
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
}

func TestRefreshOnRemoteSkipsOwnChanges(t *testing.T) {
	var sent []tea.Msg
	onEvent := RefreshOnRemote("u1", func(msg tea.Msg) { sent = append(sent, msg) })

	onEvent(domain.BoardEvent{Type: domain.EventTaskMoved, ProjectID: "p1", TaskID: "A", ActorID: "u1"})
	assert.Empty(t, sent)

	onEvent(domain.BoardEvent{Type: domain.EventTaskMoved, ProjectID: "p1", TaskID: "A", ActorID: "u2"})
	onEvent(domain.BoardEvent{Type: domain.EventTaskDeleted, ProjectID: "p1", TaskID: "B"})
	assert.Equal(t, []tea.Msg{RefreshMsg{}, RefreshMsg{}}, sent)
}

func TestViewRendersColumns(t *testing.T) {
	m := newModel(t, &stubAPI{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	out := m.View()
	for _, want := range []string{"demo", "PLANNED (2)", "IN PROGRESS (1)", "COMPLETED (0)", "task A", "empty"} {
		assert.Contains(t, out, want)
	}
}
