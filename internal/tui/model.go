// Package tui is the terminal Kanban board.
//
// It follows the bubbletea loop: key presses become messages, Update changes
// the model, View renders it. Board state lives in a board.Store; the model
// subscribes to it, so optimistic moves and rollbacks show up as soon as the
// store commits them.
package tui

import (
	"context"
	"errors"
	"fmt"

	"predman/internal/board"
	"predman/internal/domain"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// RefreshMsg asks the board to reload from the server, e.g. after another
// member changed it. While a task is grabbed or a request is running the
// reload waits until the board is idle again.
type RefreshMsg struct{}

// RefreshOnRemote returns a board event handler that sends a RefreshMsg for
// changes made by anyone but selfID. Own changes are already on screen.
func RefreshOnRemote(selfID string, send func(tea.Msg)) func(domain.BoardEvent) {
	return func(ev domain.BoardEvent) {
		if ev.ActorID != "" && ev.ActorID == selfID {
			return
		}
		send(RefreshMsg{})
	}
}

type boardChangedMsg struct{}

type loadedMsg struct{ err error }

type movedMsg struct {
	src, dst board.Position
	err      error
}

type savedMsg struct {
	done string
	err  error
}

// Model is the board screen.
type Model struct {
	ctx   context.Context
	store *board.Store
	title string

	board  domain.Board
	loaded bool

	cursor  board.Position
	grabbed *board.Position
	target  board.Position

	busy   bool
	stale  bool // a refresh arrived while busy or grabbing
	status string
	errMsg string

	adding  bool
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	changes     chan struct{}
	unsubscribe func()

	width  int
	height int
}

// New builds the board screen for store. title is shown in the header
// (usually the project name).
func New(ctx context.Context, store *board.Store, title string) *Model {
	in := textinput.New()
	in.Placeholder = "task name"
	in.CharLimit = 200

	m := &Model{
		ctx:     ctx,
		store:   store,
		title:   title,
		cursor:  board.Position{Bucket: domain.BucketPlanned},
		input:   in,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    defaultKeys(),
		changes: make(chan struct{}, 1),
	}
	m.unsubscribe = store.Subscribe(func(domain.Board) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.sync()
	return m
}

// Close stops listening to the store.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForChange(), m.spinner.Tick}
	if !m.loaded {
		m.busy = true
		cmds = append(cmds, m.load())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case boardChangedMsg:
		m.sync()
		return m, m.waitForChange()

	case RefreshMsg:
		m.stale = true
		return m, m.reloadIfStale()

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.fail("load board", msg.err)
			return m, m.reloadIfStale()
		}
		m.errMsg = ""
		m.sync()
		return m, m.reloadIfStale()

	case movedMsg:
		m.busy = false
		if msg.err != nil {
			m.fail("move rejected, board restored", msg.err)
			m.cursor = msg.src
		} else {
			m.errMsg = ""
			m.status = fmt.Sprintf("moved to %s", msg.dst.Bucket)
		}
		m.sync()
		return m, m.reloadIfStale()

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.done, msg.err)
			return m, m.reloadIfStale()
		}
		m.errMsg = ""
		m.status = msg.done
		m.sync()
		return m, m.reloadIfStale()

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.grabbed != nil {
			// same as dropping outside the board
			m.grabbed = nil
			m.status = "move cancelled"
		}
		return m, m.reloadIfStale()

	case key.Matches(msg, m.keys.Grab):
		if m.grabbed != nil {
			return m, m.drop()
		}
		if m.busy || len(m.board.Column(m.cursor.Bucket)) == 0 {
			return m, nil
		}
		src := m.cursor
		m.grabbed = &src
		m.target = src
		m.status = ""
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.step(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.step(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.step(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.step(1, 0)

	case key.Matches(msg, m.keys.Reload):
		if m.busy || m.grabbed != nil {
			return m, nil
		}
		m.stale = false
		m.busy = true
		return m, m.load()

	case key.Matches(msg, m.keys.Add):
		if m.busy || m.grabbed != nil {
			return m, nil
		}
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok || m.busy || m.grabbed != nil {
			return m, nil
		}
		m.busy = true
		return m, m.remove(t)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		name := m.input.Value()
		m.adding = false
		m.input.Blur()
		if name == "" {
			return m, nil
		}
		m.busy = true
		return m, m.add(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// step moves the cursor, or the grabbed task's target slot while grabbing.
func (m *Model) step(dx, dy int) {
	pos := &m.cursor
	if m.grabbed != nil {
		pos = &m.target
	}

	if dx != 0 {
		i := bucketIndex(pos.Bucket) + dx
		if i < 0 || i >= len(domain.Buckets) {
			return
		}
		pos.Bucket = domain.Buckets[i]
	}
	pos.Index += dy

	limit := m.lastIndex(pos.Bucket)
	if pos.Index > limit {
		pos.Index = limit
	}
	if pos.Index < 0 {
		pos.Index = 0
	}
}

// lastIndex is the highest slot the cursor (or the grabbed task) can take in
// bk. A grabbed task may also go right after the last card of another column.
func (m *Model) lastIndex(bk domain.Bucket) int {
	n := len(m.board.Column(bk))
	if m.grabbed != nil && m.grabbed.Bucket != bk {
		return n
	}
	return n - 1
}

func (m *Model) selected() (domain.Task, bool) {
	col := m.board.Column(m.cursor.Bucket)
	if m.cursor.Index < 0 || m.cursor.Index >= len(col) {
		return domain.Task{}, false
	}
	return col[m.cursor.Index], true
}

// sync pulls the latest board from the store and keeps the cursor in range.
func (m *Model) sync() {
	b, ok := m.store.Get()
	if !ok {
		return
	}
	m.board = b
	m.loaded = true
	if m.cursor.Index > len(b.Column(m.cursor.Bucket))-1 {
		m.cursor.Index = max(0, len(b.Column(m.cursor.Bucket))-1)
	}
}

func (m *Model) fail(what string, err error) {
	m.status = ""
	switch {
	case errors.Is(err, domain.ErrConflict):
		m.errMsg = what + ": board changed on the server, press r to reload"
	default:
		m.errMsg = fmt.Sprintf("%s: %v", what, err)
	}
}

func (m *Model) drop() tea.Cmd {
	src, dst := *m.grabbed, m.target
	m.grabbed = nil
	m.cursor = dst
	m.busy = true

	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		err := store.Reorder(ctx, src, &dst)
		return movedMsg{src: src, dst: dst, err: err}
	}
}

// reloadIfStale starts a deferred reload once nothing is grabbed or running.
func (m *Model) reloadIfStale() tea.Cmd {
	if !m.stale || m.busy || m.grabbed != nil {
		return nil
	}
	m.stale = false
	m.busy = true
	return m.load()
}

func (m *Model) load() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: store.Load(ctx)}
	}
}

func (m *Model) add(name string) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		_, err := store.AddTask(ctx, name, "", 0)
		return savedMsg{done: "task added", err: err}
	}
}

func (m *Model) remove(t domain.Task) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		err := store.DeleteTask(ctx, t.ID)
		return savedMsg{done: fmt.Sprintf("deleted %q", t.Name), err: err}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return boardChangedMsg{}
	}
}

func bucketIndex(bk domain.Bucket) int {
	for i, b := range domain.Buckets {
		if b == bk {
			return i
		}
	}
	return 0
}
