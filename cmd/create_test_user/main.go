package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"predman/internal/db"
	"predman/internal/domain"
	"predman/internal/logger"
	"predman/internal/repository"
	"predman/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "tester@predman.local", "user email")
	login := flag.String("login", "tester", "user login")
	password := flag.String("password", "tester123", "user password")
	flag.Parse()

	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"))

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	// try to find existing user
	u, err := repo.GetByEmail(ctx, *email)
	switch {
	case err == nil:
		logger.Info("user already exists", "id", u.ID)
	case errors.Is(err, domain.ErrNotFound):
		hash, err := service.HashPassword(*password)
		if err != nil {
			logger.Fatal("hash password failed", "error", err)
		}
		u = &domain.User{Email: *email, Login: *login, PasswordHash: hash}
		if err := repo.Create(ctx, u); err != nil {
			logger.Fatal("create user failed", "error", err)
		}
		logger.Info("user created", "id", u.ID)
	default:
		logger.Fatal("lookup failed", "error", err)
	}

	// verify read
	u2, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		logger.Fatal("get by id failed", "error", err)
	}
	logger.Info("fetched user", "id", u2.ID, "login", u2.Login, "email", u2.Email, "created_at", u2.CreatedAt)

	token, err := service.GenerateJWT(u2.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
