package repository

import (
	"context"

	"predman/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Assign(ctx context.Context, a domain.TaskAssignment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO task_assignments (task_id, user_id) VALUES ($1, $2)`, a.TaskID, a.UserID)
	return translate(err, "assignment")
}

func (r *AssignmentRepository) Unassign(ctx context.Context, a domain.TaskAssignment) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM task_assignments WHERE task_id = $1 AND user_id = $2`, a.TaskID, a.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("assignment not found")
	}
	return nil
}

// ListAssignees returns the members assigned to a task.
func (r *AssignmentRepository) ListAssignees(ctx context.Context, taskID string) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id::text, u.login, u.email, u.created_at
		 FROM users u
		 JOIN task_assignments a ON a.user_id = u.id
		 WHERE a.task_id = $1
		 ORDER BY u.login`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListTasks returns the tasks of a project assigned to userID.
func (r *AssignmentRepository) ListTasks(ctx context.Context, projectID, userID string) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id::text, t.project_id::text, t.name, t.description, t.story_points, t.status,
		        t.next_id::text, t.created_at, t.updated_at
		 FROM tasks t
		 JOIN task_assignments a ON a.task_id = t.id
		 WHERE t.project_id = $1 AND a.user_id = $2
		 ORDER BY t.created_at`, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
