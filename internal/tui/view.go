package tui

import (
	"fmt"
	"strings"

	"predman/internal/board"
	"predman/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("#5B8DEF"))
	columnTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#5B8DEF"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	grabbedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#F5C542"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
)

var columnTitles = map[domain.Bucket]string{
	domain.BucketPlanned:    "PLANNED",
	domain.BucketInProgress: "IN PROGRESS",
	domain.BucketCompleted:  "COMPLETED",
}

func (m *Model) View() string {
	if !m.loaded {
		if m.errMsg != "" {
			return errorStyle.Render(m.errMsg) + "\n" + mutedStyle.Render("r to retry, q to quit") + "\n"
		}
		return fmt.Sprintf("%s loading board...\n", m.spinner.View())
	}

	width := m.width
	if width <= 0 {
		width = 100
	}
	colWidth := max(20, width/len(domain.Buckets)-4)

	shown := m.board
	var focus board.Position
	grabbing := m.grabbed != nil
	if grabbing {
		// preview the drop
		if preview, _, _, err := board.Splice(m.board, *m.grabbed, m.target); err == nil {
			shown = preview
		}
		focus = m.target
	} else {
		focus = m.cursor
	}

	cols := make([]string, 0, len(domain.Buckets))
	for _, bk := range domain.Buckets {
		cols = append(cols, m.renderColumn(shown, bk, focus, grabbing, colWidth))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("▦ " + m.title))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderColumn(b domain.Board, bk domain.Bucket, focus board.Position, grabbing bool, width int) string {
	tasks := b.Column(bk)
	lines := []string{columnTitleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[bk], len(tasks)))}

	for i, t := range tasks {
		line := cardLine(t, width-2)
		if bk == focus.Bucket && i == focus.Index {
			if grabbing {
				line = grabbedStyle.Render(line)
			} else {
				line = cursorStyle.Render(line)
			}
		}
		lines = append(lines, line)
	}
	if len(tasks) == 0 {
		lines = append(lines, mutedStyle.Render("empty"))
	}

	style := columnStyle
	if bk == focus.Bucket {
		style = activeColumnStyle
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func cardLine(t domain.Task, width int) string {
	label := t.Name
	if t.StoryPoints > 0 {
		label = fmt.Sprintf("%s [%g]", t.Name, t.StoryPoints)
	}
	if width > 1 && lipgloss.Width(label) > width {
		r := []rune(label)
		if len(r) > width-1 {
			label = string(r[:width-1]) + "…"
		}
	}
	return label
}

func (m *Model) renderFooter() string {
	var lines []string
	switch {
	case m.adding:
		lines = append(lines, "new task: "+m.input.View())
	case m.grabbed != nil:
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("moving from %s to %s: space drops, esc cancels", m.grabbed, m.target)))
	case m.busy:
		lines = append(lines, m.spinner.View()+" saving...")
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	} else if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}
