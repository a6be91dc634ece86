package domain

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Login        string    `db:"login" json:"login"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// UserProjects - user with the projects they joined
type UserProjects struct {
	ID             string    `json:"id"`
	Login          string    `json:"login"`
	Email          string    `json:"email"`
	JoinedProjects []Project `json:"joined_projects"`
}

// RegisterRequest - payload for POST /v1/users/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest - payload for POST /v1/users/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
