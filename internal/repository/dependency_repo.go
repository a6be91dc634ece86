package repository

import (
	"context"

	"predman/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DependencyRepository struct {
	db *pgxpool.Pool
}

func NewDependencyRepository(db *pgxpool.Pool) *DependencyRepository {
	return &DependencyRepository{db: db}
}

func (r *DependencyRepository) Add(ctx context.Context, d domain.TaskDependency) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO task_dependencies (task_id, dependency_id) VALUES ($1, $2)`, d.TaskID, d.DependencyID)
	return translate(err, "dependency")
}

func (r *DependencyRepository) Remove(ctx context.Context, d domain.TaskDependency) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM task_dependencies WHERE task_id = $1 AND dependency_id = $2`, d.TaskID, d.DependencyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("dependency not found")
	}
	return nil
}

// ListForTask returns the ids of the tasks taskID depends on.
func (r *DependencyRepository) ListForTask(ctx context.Context, taskID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT dependency_id::text FROM task_dependencies WHERE task_id = $1 ORDER BY dependency_id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListForProject returns every dependency edge between tasks of a project.
func (r *DependencyRepository) ListForProject(ctx context.Context, projectID string) ([]domain.TaskDependency, error) {
	rows, err := r.db.Query(ctx,
		`SELECT d.task_id::text, d.dependency_id::text
		 FROM task_dependencies d
		 JOIN tasks t ON t.id = d.task_id
		 WHERE t.project_id = $1`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []domain.TaskDependency
	for rows.Next() {
		var d domain.TaskDependency
		if err := rows.Scan(&d.TaskID, &d.DependencyID); err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}
