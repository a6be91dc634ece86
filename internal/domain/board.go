package domain

import (
	"fmt"
	"sort"
)

// Bucket - board column identifier as used by clients
type Bucket string

const (
	BucketPlanned    Bucket = "planned"
	BucketInProgress Bucket = "inprogress"
	BucketCompleted  Bucket = "completed"
)

// Buckets lists the board columns in display order.
var Buckets = []Bucket{BucketPlanned, BucketInProgress, BucketCompleted}

// ParseBucket validates a column identifier.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(s); b {
	case BucketPlanned, BucketInProgress, BucketCompleted:
		return b, nil
	}
	return "", Invalid(fmt.Sprintf("unknown bucket %q", s))
}

// Status returns the canonical task status stored for tasks in this column.
func (b Bucket) Status() TaskStatus {
	switch b {
	case BucketInProgress:
		return StatusInProgress
	case BucketCompleted:
		return StatusCompleted
	default:
		return StatusPlanned
	}
}

// BucketOf maps a task status to its column.
func BucketOf(s TaskStatus) Bucket {
	switch s {
	case StatusInProgress:
		return BucketInProgress
	case StatusCompleted:
		return BucketCompleted
	default:
		return BucketPlanned
	}
}

// Board holds the ordered task columns of one project.
type Board struct {
	Planned    []Task `json:"planned"`
	InProgress []Task `json:"inprogress"`
	Completed  []Task `json:"completed"`
}

// NewBoard returns a board with empty (non-nil) columns.
func NewBoard() Board {
	return Board{Planned: []Task{}, InProgress: []Task{}, Completed: []Task{}}
}

// Column returns the tasks of one column.
func (b *Board) Column(bk Bucket) []Task {
	switch bk {
	case BucketInProgress:
		return b.InProgress
	case BucketCompleted:
		return b.Completed
	default:
		return b.Planned
	}
}

// SetColumn replaces the tasks of one column.
func (b *Board) SetColumn(bk Bucket, tasks []Task) {
	switch bk {
	case BucketInProgress:
		b.InProgress = tasks
	case BucketCompleted:
		b.Completed = tasks
	default:
		b.Planned = tasks
	}
}

// Clone returns a deep copy that shares no slices or pointers with b.
func (b Board) Clone() Board {
	return Board{
		Planned:    cloneTasks(b.Planned),
		InProgress: cloneTasks(b.InProgress),
		Completed:  cloneTasks(b.Completed),
	}
}

func cloneTasks(src []Task) []Task {
	if src == nil {
		return nil
	}
	out := make([]Task, len(src))
	for i, t := range src {
		if t.Next != nil {
			next := *t.Next
			t.Next = &next
		}
		out[i] = t
	}
	return out
}

// Find locates a task by id.
func (b *Board) Find(id string) (Bucket, int, bool) {
	for _, bk := range Buckets {
		for i, t := range b.Column(bk) {
			if t.ID == id {
				return bk, i, true
			}
		}
	}
	return "", 0, false
}

// Len returns the total number of tasks on the board.
func (b *Board) Len() int {
	return len(b.Planned) + len(b.InProgress) + len(b.Completed)
}

// SortLinked rebuilds the board from an unordered task list by walking each
// status chain from its head. A head is a task that no other task of the same
// status points to. Tasks that cannot be reached from the head are returned
// separately (and appended to their column in creation order) so callers can
// report them.
func SortLinked(tasks []Task) (Board, []Task, error) {
	board := NewBoard()
	var orphans []Task

	byStatus := make(map[TaskStatus][]Task)
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	for _, bk := range Buckets {
		status := bk.Status()
		column := byStatus[status]
		if len(column) == 0 {
			continue
		}

		byID := make(map[string]Task, len(column))
		referenced := make(map[string]bool, len(column))
		for _, t := range column {
			byID[t.ID] = t
		}
		for _, t := range column {
			if t.Next != nil {
				if _, ok := byID[*t.Next]; ok {
					referenced[*t.Next] = true
				}
			}
		}

		var heads []Task
		for _, t := range column {
			if !referenced[t.ID] {
				heads = append(heads, t)
			}
		}
		if len(heads) == 0 {
			return Board{}, nil, fmt.Errorf("%s chain has a cycle: %w", bk, ErrBrokenOrder)
		}
		sortByCreation(heads)

		visited := make(map[string]bool, len(column))
		ordered := make([]Task, 0, len(column))
		cur, ok := heads[0], true
		for ok {
			if visited[cur.ID] {
				return Board{}, nil, fmt.Errorf("%s chain has a cycle: %w", bk, ErrBrokenOrder)
			}
			visited[cur.ID] = true
			ordered = append(ordered, cur)
			if cur.Next == nil {
				break
			}
			cur, ok = byID[*cur.Next]
		}

		var rest []Task
		for _, t := range column {
			if !visited[t.ID] {
				rest = append(rest, t)
			}
		}
		sortByCreation(rest)
		orphans = append(orphans, rest...)
		board.SetColumn(bk, append(ordered, rest...))
	}

	return board, orphans, nil
}

func sortByCreation(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}
