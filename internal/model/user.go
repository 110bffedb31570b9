package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"` // rbac.RoleUser / rbac.RoleAdmin
	CreatedAt    time.Time `json:"created_at"`
}
