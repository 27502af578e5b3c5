package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu-insight-be/internal/constant"
	"edu-insight-be/internal/dto"
	"edu-insight-be/internal/model"
	"edu-insight-be/internal/pkg/logger"
	"edu-insight-be/internal/repository/memory"
	"edu-insight-be/internal/repository/specification"
	"edu-insight-be/internal/repository/unitofwork"
	"edu-insight-be/pkg/events"
	pktNats "edu-insight-be/pkg/nats"
	"edu-insight-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetSessions(ctx context.Context, userId uuid.UUID) ([]dto.GetAllSessionsResponse, error)
	GetHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
	Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	qa             *pipeline.Pipeline
	windows        *memory.WindowRepository
	pubSub         *gochannel.GoChannel
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
	maxHistory     int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	qa *pipeline.Pipeline,
	windows *memory.WindowRepository,
	pubSub *gochannel.GoChannel,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	maxHistory int,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		qa:             qa,
		windows:        windows,
		pubSub:         pubSub,
		eventPublisher: eventPublisher,
		log:            log,
		maxHistory:     maxHistory,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &model.ChatSession{
		Id:     uuid.New(),
		UserId: userId,
		Title:  constant.DefaultSessionTitle,
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id, Title: session.Title}, nil
}

func (s *chatService) GetSessions(ctx context.Context, userId uuid.UUID) ([]dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OwnedByUser{UserId: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]dto.GetAllSessionsResponse, len(sessions))
	for i, session := range sessions {
		result[i] = dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return result, nil
}

func (s *chatService) GetHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionId{SessionId: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	result := make([]dto.GetChatHistoryResponse, len(messages))
	for i, msg := range messages {
		item := dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
		if msg.Suggestions != nil {
			var suggestions []string
			if err := json.Unmarshal([]byte(*msg.Suggestions), &suggestions); err == nil {
				item.Suggestions = suggestions
			}
		}
		if msg.ChartJSON != nil {
			var chart pipeline.ChartSpec
			if err := json.Unmarshal([]byte(*msg.ChartJSON), &chart); err == nil {
				item.Chart = &chart
			}
		}
		result[i] = item
	}
	return result, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteAllBySessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.windows.Delete(session.Id.String())
	return nil
}

func (s *chatService) Ask(ctx context.Context, userId uuid.UUID, req *dto.AskRequest) (*dto.AskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		return nil, errors.New("user not found")
	}
	identity := identityForUser(user)

	window, err := s.loadWindow(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}

	result := s.qa.Execute(ctx, identity, req.Question, window)

	s.log.Info("chat", "question answered", map[string]interface{}{
		"session_id":    session.Id.String(),
		"role":          string(identity.Role),
		"access_denied": result.AccessDenied,
	})

	now := time.Now()
	userMsg := &model.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleUser,
		Content:       req.Question,
		CreatedAt:     now,
	}
	assistantMsg := &model.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       result.Answer,
		CreatedAt:     now.Add(time.Millisecond),
	}
	if len(result.Suggestions) > 0 {
		if data, err := json.Marshal(result.Suggestions); err == nil {
			str := string(data)
			assistantMsg.Suggestions = &str
		}
	}
	if result.Chart != nil {
		if data, err := json.Marshal(result.Chart); err == nil {
			str := string(data)
			assistantMsg.ChartJSON = &str
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	// First question names the session
	if session.Title == constant.DefaultSessionTitle {
		session.Title = deriveTitle(req.Question)
	}
	session.UpdatedAt = now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.storeWindow(session.Id, window, req.Question, result.Answer)
	s.publishOutcome(ctx, user, session, req.Question, result)

	return &dto.AskResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Answer:           result.Answer,
		Suggestions:      result.Suggestions,
		Chart:            result.Chart,
		AccessDenied:     result.AccessDenied,
		CreatedAt:        assistantMsg.CreatedAt,
	}, nil
}

func (s *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*model.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedByUser{UserId: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("chat session not found")
	}
	return session, nil
}

// loadWindow serves the conversation window from cache when possible and
// rebuilds it from persisted messages otherwise.
func (s *chatService) loadWindow(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (pipeline.Window, error) {
	if window, found := s.windows.Get(sessionId.String()); found {
		return window, nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionId{SessionId: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	window := make(pipeline.Window, 0, len(messages))
	for _, msg := range messages {
		role := pipeline.TurnUser
		if msg.Role == constant.ChatMessageRoleAssistant {
			role = pipeline.TurnAssistant
		}
		window = append(window, pipeline.Turn{
			Role:      role,
			Text:      msg.Content,
			Timestamp: msg.CreatedAt,
		})
	}
	window = window.Last(s.maxHistory)

	s.windows.Save(sessionId.String(), window)
	return window, nil
}

func (s *chatService) storeWindow(sessionId uuid.UUID, window pipeline.Window, question, answer string) {
	now := time.Now()
	window = append(window,
		pipeline.Turn{Role: pipeline.TurnUser, Text: question, Timestamp: now},
		pipeline.Turn{Role: pipeline.TurnAssistant, Text: answer, Timestamp: now},
	)
	s.windows.Save(sessionId.String(), window.Last(s.maxHistory))
}

// publishOutcome emits the per-question events. Both buses are best effort:
// the answer has already been persisted and returned, eventing failures only
// get logged.
func (s *chatService) publishOutcome(ctx context.Context, user *model.User, session *model.ChatSession, question string, result *pipeline.Result) {
	if result.AccessDenied && s.pubSub != nil {
		payload := dto.AccessDeniedMessage{
			UserId:   user.Id,
			Question: question,
		}
		if user.StudentRollNo != nil {
			payload.StudentId = *user.StudentRollNo
		}
		if data, err := json.Marshal(payload); err == nil {
			msg := message.NewMessage(watermill.NewUUID(), data)
			if err := s.pubSub.Publish(constant.AccessDeniedTopicName, msg); err != nil {
				s.log.Warn("chat", "failed to publish access denied audit message", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if s.eventPublisher != nil {
		event := events.NewQuestionAskedEvent(
			user.Id.String(),
			session.Id.String(),
			user.Role,
			question,
			result.AccessDenied,
		)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("[WARN] Failed to publish QUESTION_ASKED event: %v\n", err)
		}
	}
}

func identityForUser(user *model.User) pipeline.Identity {
	identity := pipeline.Identity{Role: pipeline.RoleFaculty}
	if user.Role == "parent" {
		identity.Role = pipeline.RoleParent
		if user.StudentRollNo != nil {
			identity.StudentID = *user.StudentRollNo
		}
	}
	return identity
}

func deriveTitle(question string) string {
	title := question
	if len(title) > constant.SessionTitleMaxLen {
		title = title[:constant.SessionTitleMaxLen-3] + "..."
	}
	return title
}
