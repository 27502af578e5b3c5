package dto

import "github.com/google/uuid"

// AccessDeniedMessage is the payload published when a question is blocked.
type AccessDeniedMessage struct {
	UserId    uuid.UUID `json:"user_id"`
	StudentId string    `json:"student_id"`
	Question  string    `json:"question"`
}
