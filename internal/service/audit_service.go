package service

import (
	"context"
	"encoding/json"
	"log"

	"edu-insight-be/internal/dto"
	"edu-insight-be/internal/model"
	"edu-insight-be/internal/repository/unitofwork"
	"edu-insight-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IAuditService interface {
	Consume(ctx context.Context) error
}

// auditService persists denied questions off the request path. The chat
// flow publishes to an in-process topic and answers immediately; this
// consumer writes the audit rows in the background.
type auditService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewAuditService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IAuditService {
	return &auditService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (s *auditService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *auditService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AccessDeniedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal audit message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	entry := &model.AccessAuditLog{
		Id:        uuid.New(),
		UserId:    payload.UserId,
		StudentId: payload.StudentId,
		Question:  payload.Question,
		EventType: events.TypeAccessDenied,
	}

	if err := uow.AuditRepository().Create(ctx, entry); err != nil {
		log.Printf("[ERROR] Failed to persist audit entry: %v", err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[INFO] Audit entry recorded for user %s", payload.UserId)
	msg.Ack()
}
