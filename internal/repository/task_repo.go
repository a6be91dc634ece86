package repository

import (
	"context"
	"errors"

	"predman/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository stores tasks. Inside a project every status forms a singly
// linked list through next_id; all list surgery happens in one transaction
// holding the project row lock.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id::text, project_id::text, name, description, story_points, status, next_id::text, created_at, updated_at`

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.StoryPoints, &t.Status, &t.Next, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("task not found")
	}
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "task")
	}
	return &t, nil
}

func lockProject(ctx context.Context, tx pgx.Tx, projectID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id::text FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&id)
	return translate(err, "project")
}

// chainTail returns the last task of a status chain, or "" when it is empty.
func chainTail(ctx context.Context, tx pgx.Tx, projectID string, status domain.TaskStatus, exclude string) (string, error) {
	var id string
	err := tx.QueryRow(ctx,
		`SELECT id::text FROM tasks
		 WHERE project_id = $1 AND status = $2 AND next_id IS NULL AND id::text <> $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		projectID, status, exclude,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// Create appends a new task to the end of the planned chain.
func (r *TaskRepository) Create(ctx context.Context, nt domain.NewTask) (*domain.Task, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockProject(ctx, tx, nt.ProjectID); err != nil {
		return nil, err
	}

	tail, err := chainTail(ctx, tx, nt.ProjectID, domain.StatusPlanned, "")
	if err != nil {
		return nil, err
	}

	t, err := scanTask(tx.QueryRow(ctx,
		`INSERT INTO tasks (id, project_id, name, description, story_points, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+taskColumns,
		uuid.NewString(), nt.ProjectID, nt.Name, nt.Description, nt.StoryPoints, domain.StatusPlanned,
	))
	if err != nil {
		return nil, translate(err, "task")
	}

	if tail != "" {
		if _, err := tx.Exec(ctx, `UPDATE tasks SET next_id = $2 WHERE id = $1`, tail, t.ID); err != nil {
			return nil, err
		}
	}

	return &t, tx.Commit(ctx)
}

// Update applies the patch. When the successor is updated, or the status
// changes, the task is cut out of its chain and linked in front of the new
// successor in the target chain (or at its tail when there is none).
// moved reports whether the task changed position.
func (r *TaskRepository) Update(ctx context.Context, taskID string, patch domain.TaskPatch) (t *domain.Task, moved bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	cur, err := lockTask(ctx, tx, taskID, "")
	if err != nil {
		return nil, false, err
	}

	target := cur.Status
	if patch.Status != nil {
		target = *patch.Status
	}

	next := cur.Next
	moved = patch.NextUpdated || target != cur.Status
	if moved {
		var newNext *string
		if patch.NextUpdated {
			newNext = patch.Next
		}
		if newNext != nil {
			if err := validateSuccessor(ctx, tx, cur, *newNext, target); err != nil {
				return nil, false, err
			}
		}

		if err := unlink(ctx, tx, cur); err != nil {
			return nil, false, err
		}

		if newNext != nil {
			_, err = tx.Exec(ctx,
				`UPDATE tasks SET next_id = $1 WHERE next_id = $2 AND project_id = $3 AND id <> $1`,
				cur.ID, *newNext, cur.ProjectID)
		} else {
			var tail string
			tail, err = chainTail(ctx, tx, cur.ProjectID, target, cur.ID)
			if err == nil && tail != "" {
				_, err = tx.Exec(ctx, `UPDATE tasks SET next_id = $2 WHERE id = $1`, tail, cur.ID)
			}
		}
		if err != nil {
			return nil, false, err
		}
		next = newNext
	}

	patch.Apply(&cur)
	updated, err := scanTask(tx.QueryRow(ctx,
		`UPDATE tasks
		 SET name = $2, description = $3, story_points = $4, status = $5, next_id = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+taskColumns,
		cur.ID, cur.Name, cur.Description, cur.StoryPoints, cur.Status, next,
	))
	if err != nil {
		return nil, false, translate(err, "task")
	}

	return &updated, moved, tx.Commit(ctx)
}

// Delete removes the task; its predecessor takes over its successor.
func (r *TaskRepository) Delete(ctx context.Context, ref domain.TaskRef) (*domain.Task, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cur, err := lockTask(ctx, tx, ref.TaskID, ref.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := unlink(ctx, tx, cur); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, cur.ID); err != nil {
		return nil, err
	}
	return &cur, tx.Commit(ctx)
}

// lockTask locks the task's project and then the task itself. When
// projectID is set the task must belong to it.
func lockTask(ctx context.Context, tx pgx.Tx, taskID, projectID string) (domain.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return domain.Task{}, domain.NotFound("task not found")
	}

	var owner string
	if err := tx.QueryRow(ctx, `SELECT project_id::text FROM tasks WHERE id = $1`, taskID).Scan(&owner); err != nil {
		return domain.Task{}, translate(err, "task")
	}
	if projectID != "" && owner != projectID {
		return domain.Task{}, domain.NotFound("task not found in project")
	}
	if err := lockProject(ctx, tx, owner); err != nil {
		return domain.Task{}, err
	}

	t, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, taskID))
	if err != nil {
		return domain.Task{}, translate(err, "task")
	}
	return t, nil
}

func validateSuccessor(ctx context.Context, tx pgx.Tx, cur domain.Task, nextID string, target domain.TaskStatus) error {
	if nextID == cur.ID {
		return domain.Conflict("task cannot follow itself")
	}
	if _, err := uuid.Parse(nextID); err != nil {
		return domain.Conflict("next task not found")
	}

	var (
		status    domain.TaskStatus
		projectID string
	)
	err := tx.QueryRow(ctx, `SELECT status, project_id::text FROM tasks WHERE id = $1`, nextID).Scan(&status, &projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Conflict("next task not found")
	}
	if err != nil {
		return err
	}
	if projectID != cur.ProjectID {
		return domain.Conflict("next task belongs to another project")
	}
	if status != target {
		return domain.Conflict("next task has a different status")
	}
	return nil
}

// unlink cuts t out of its chain: its predecessor now points to t's successor.
func unlink(ctx context.Context, tx pgx.Tx, t domain.Task) error {
	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET next_id = $2 WHERE next_id = $1 AND project_id = $3`, t.ID, t.Next, t.ProjectID,
	); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE tasks SET next_id = NULL WHERE id = $1`, t.ID)
	return err
}
