package board

import (
	"context"
	"errors"
	"fmt"

	"predman/internal/domain"
	"predman/internal/logger"
)

// ErrInvalidPosition is returned when a move refers to a slot that does not
// exist on the current board.
var ErrInvalidPosition = errors.New("invalid board position")

// Position is a slot on the board: a column and an index inside it.
type Position struct {
	Bucket domain.Bucket
	Index  int
}

func (p Position) String() string {
	return fmt.Sprintf("%s[%d]", p.Bucket, p.Index)
}

// Splice moves the task at src to dst on a copy of b. It returns the new
// board, the moved task and the patch that tells the server about the move:
// the new successor (nil when the task is now last), always flagged as
// updated, plus the new status for moves across columns.
func Splice(b domain.Board, src, dst Position) (domain.Board, domain.Task, domain.TaskPatch, error) {
	if _, err := domain.ParseBucket(string(src.Bucket)); err != nil {
		return domain.Board{}, domain.Task{}, domain.TaskPatch{}, err
	}
	if _, err := domain.ParseBucket(string(dst.Bucket)); err != nil {
		return domain.Board{}, domain.Task{}, domain.TaskPatch{}, err
	}

	out := b.Clone()
	srcCol := out.Column(src.Bucket)
	if src.Index < 0 || src.Index >= len(srcCol) {
		return domain.Board{}, domain.Task{}, domain.TaskPatch{}, fmt.Errorf("source %s: %w", src, ErrInvalidPosition)
	}

	moved := srcCol[src.Index]
	remaining := append(srcCol[:src.Index:src.Index], srcCol[src.Index+1:]...)

	sameColumn := src.Bucket == dst.Bucket
	destCol := remaining
	if !sameColumn {
		destCol = out.Column(dst.Bucket)
	}
	if dst.Index < 0 || dst.Index > len(destCol) {
		return domain.Board{}, domain.Task{}, domain.TaskPatch{}, fmt.Errorf("destination %s: %w", dst, ErrInvalidPosition)
	}

	patch := domain.TaskPatch{NextUpdated: true}
	if !sameColumn {
		status := dst.Bucket.Status()
		moved.Status = status
		patch.Status = &status
	}

	destCol = insertAt(destCol, dst.Index, moved)
	if dst.Index+1 < len(destCol) {
		next := destCol[dst.Index+1].ID
		patch.Next = &next
	}

	if !sameColumn {
		out.SetColumn(src.Bucket, remaining)
	}
	out.SetColumn(dst.Bucket, destCol)

	return out, moved, patch, nil
}

func insertAt(tasks []domain.Task, i int, t domain.Task) []domain.Task {
	tasks = append(tasks, domain.Task{})
	copy(tasks[i+1:], tasks[i:])
	tasks[i] = t
	return tasks
}

// Reorder moves a task from src to dst. A nil dst (dropped outside the board)
// is a no-op.
//
// The move is applied locally and published to subscribers before the server
// is asked to relink the task. If the server call fails for any reason the
// whole board is restored to the state it had before the move and the error
// is returned; there is no retry. Reorders never run concurrently: a second
// call waits until the first one has been confirmed or rolled back. The
// update request is not cancelled when ctx is.
func (s *Store) Reorder(ctx context.Context, src Position, dst *Position) error {
	if dst == nil {
		return nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	snapshot, ok := s.Get()
	if !ok {
		return ErrNotLoaded
	}

	spliced, moved, patch, err := Splice(snapshot, src, *dst)
	if err != nil {
		return err
	}

	s.commit(spliced)

	if _, err := s.api.UpdateTask(context.WithoutCancel(ctx), moved.ID, patch); err != nil {
		s.commit(snapshot)
		logger.Error("task move rejected, board restored",
			"project_id", s.projectID,
			"task_id", moved.ID,
			"from", src.String(),
			"to", dst.String(),
			"error", err,
		)
		return fmt.Errorf("move task %s: %w", moved.ID, err)
	}

	logger.Debug("task moved", "task_id", moved.ID, "from", src.String(), "to", dst.String())
	return nil
}
