package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByChatSessionId filters messages by their parent session
type ByChatSessionId struct {
	SessionId uuid.UUID
}

func (s ByChatSessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.SessionId)
}

// OwnedByUser filters rows by user ownership
type OwnedByUser struct {
	UserId uuid.UUID
}

func (s OwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}
