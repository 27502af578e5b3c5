package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FullName      string `json:"full_name" validate:"required,min=3"`
	Role          string `json:"role" validate:"required,oneof=faculty parent"`
	StudentRollNo string `json:"student_roll_no" validate:"required_if=Role parent"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	Id            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	StudentRollNo string    `json:"student_roll_no,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
