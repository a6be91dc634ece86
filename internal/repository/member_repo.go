package repository

import (
	"context"
	"errors"

	"predman/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

// MemberRemoval describes what happened to a project when a member left it.
type MemberRemoval struct {
	ProjectID      string
	NewOwnerID     string // set when ownership moved
	ProjectDeleted bool
}

func (r *MemberRepository) Add(ctx context.Context, projectID, userID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`, projectID, userID)
	return translate(err, "member")
}

func (r *MemberRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&ok)
	return ok, translate(err, "project")
}

func (r *MemberRepository) Count(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM project_members WHERE project_id = $1`, projectID).Scan(&n)
	return n, translate(err, "project")
}

func (r *MemberRepository) List(ctx context.Context, projectID string) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id::text, u.login, u.email, u.created_at
		 FROM users u
		 JOIN project_members m ON m.user_id = u.id
		 WHERE m.project_id = $1
		 ORDER BY m.joined_at`, projectID)
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

// SetOwner hands the project to userID, who must already be a member.
func (r *MemberRepository) SetOwner(ctx context.Context, projectID, userID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET owner_id = $2, updated_at = now()
		 WHERE id = $1
		   AND EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Forbidden("new owner must be a project member")
	}
	return nil
}

// Remove drops the membership. Removing the owner passes ownership to a
// random remaining member; removing the last member deletes the project.
func (r *MemberRepository) Remove(ctx context.Context, projectID, userID string) (MemberRemoval, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return MemberRemoval{}, err
	}
	defer tx.Rollback(ctx)

	res, err := removeMember(ctx, tx, projectID, userID)
	if err != nil {
		return MemberRemoval{}, err
	}
	return res, tx.Commit(ctx)
}

func removeMember(ctx context.Context, tx pgx.Tx, projectID, userID string) (MemberRemoval, error) {
	res := MemberRemoval{ProjectID: projectID}

	var ownerID string
	err := tx.QueryRow(ctx,
		`SELECT owner_id::text FROM projects WHERE id = $1 FOR UPDATE`, projectID,
	).Scan(&ownerID)
	if err != nil {
		return res, translate(err, "project")
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return res, err
	}
	if tag.RowsAffected() == 0 {
		return res, domain.NotFound("member not found")
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM task_assignments a USING tasks t
		 WHERE a.task_id = t.id AND t.project_id = $1 AND a.user_id = $2`, projectID, userID,
	); err != nil {
		return res, err
	}

	var next string
	err = tx.QueryRow(ctx,
		`SELECT user_id::text FROM project_members WHERE project_id = $1 ORDER BY random() LIMIT 1`,
		projectID,
	).Scan(&next)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID); err != nil {
			return res, err
		}
		res.ProjectDeleted = true
		return res, nil
	case err != nil:
		return res, err
	}

	if ownerID == userID {
		if _, err := tx.Exec(ctx,
			`UPDATE projects SET owner_id = $2, updated_at = now() WHERE id = $1`, projectID, next,
		); err != nil {
			return res, err
		}
		res.NewOwnerID = next
	}
	return res, nil
}
