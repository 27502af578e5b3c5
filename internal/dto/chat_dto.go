package dto

import (
	"time"

	"github.com/google/uuid"

	"edu-insight-be/pkg/pipeline"
)

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id          uuid.UUID           `json:"id"`
	Role        string              `json:"role"`
	Content     string              `json:"content"`
	Suggestions []string            `json:"suggestions,omitempty"`
	Chart       *pipeline.ChartSpec `json:"chart,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type AskRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Question      string    `json:"question" validate:"required,min=1,max=2000"`
}

type AskResponse struct {
	ChatSessionId    uuid.UUID           `json:"chat_session_id"`
	ChatSessionTitle string              `json:"title"`
	Answer           string              `json:"answer"`
	Suggestions      []string            `json:"suggestions"`
	Chart            *pipeline.ChartSpec `json:"chart,omitempty"`
	AccessDenied     bool                `json:"access_denied"`
	CreatedAt        time.Time           `json:"created_at"`
}
