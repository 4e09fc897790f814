package models

import "github.com/uptrace/bun"

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID    string `bun:"id,pk" json:"id"`
	Email string `bun:"email" json:"email"`
	Name  string `bun:"name" json:"name"`
	Role  string `bun:"role" json:"role"`
}
