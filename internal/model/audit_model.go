package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessAuditLog records every denied question so access-control behavior
// can be reviewed after the fact.
type AccessAuditLog struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	StudentId string    `gorm:"type:varchar(50)"`
	Question  string    `gorm:"type:text;not null"`
	EventType string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AccessAuditLog) TableName() string {
	return "access_audit_logs"
}
