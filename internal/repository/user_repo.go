package repository

import (
	"context"

	"predman/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id::text, login, email, password_hash, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.ID = uuid.NewString()
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (id, login, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		u.ID, u.Login, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return translate(err, "user")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email,
	).Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

// Delete removes the user. For every project the user belongs to, membership
// is dropped first: owned projects get a new random owner, or are deleted
// when nobody else is left.
func (r *UserRepository) Delete(ctx context.Context, id string) ([]MemberRemoval, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT project_id::text FROM project_members WHERE user_id = $1`, id)
	if err != nil {
		return nil, err
	}
	var projectIDs []string
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			rows.Close()
			return nil, err
		}
		projectIDs = append(projectIDs, pid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	removals := make([]MemberRemoval, 0, len(projectIDs))
	for _, pid := range projectIDs {
		res, err := removeMember(ctx, tx, pid, id)
		if err != nil {
			return nil, err
		}
		removals = append(removals, res)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.NotFound("user not found")
	}

	return removals, tx.Commit(ctx)
}
