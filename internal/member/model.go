package member

import "time"

type Member struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	IsStudent bool      `db:"is_student" json:"is_student"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=255"`
	Email     string `json:"email" binding:"omitempty,email"`
	IsStudent bool   `json:"is_student"`
}
