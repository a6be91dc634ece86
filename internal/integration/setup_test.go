package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"predman/internal/db"
	"predman/internal/domain"
	"predman/internal/repository"
	"predman/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// connect opens DATABASE_URL and applies the migrations, or skips the test.
func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

// seedProject creates a fresh owner and a project for them.
func seedProject(t *testing.T, pool *pgxpool.Pool) (*domain.User, *domain.ProjectInfo) {
	t.Helper()
	ctx := context.Background()

	hash, err := service.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{Login: "it-" + uuid.NewString()[:8], PasswordHash: hash}
	u.Email = u.Login + "@example.com"
	if err := repository.NewUserRepository(pool).Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	p, err := repository.NewProjectRepository(pool).Create(ctx, u.ID, domain.NewProject{
		Name:    "integration",
		DueDate: domain.NewDate(time.Now().AddDate(0, 1, 0)),
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	t.Cleanup(func() {
		_ = repository.NewProjectRepository(pool).Delete(context.Background(), p.ID)
	})
	return u, p
}
