package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"edu-insight-be/internal/constant"
	"edu-insight-be/internal/model"
	"edu-insight-be/internal/repository/specification"
	"edu-insight-be/internal/repository/unitofwork"
	"edu-insight-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.StudentRepository())
	assert.NotNil(t, uow.ChatSessionRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Student Repository", func(t *testing.T) {
		count, err := uow.StudentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Student count: %d", count)
	})

	t.Run("Check Transactional Chat Flow", func(t *testing.T) {
		// Sessions carry a user FK, so create the owner first.
		userId := uuid.New()
		user := &model.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Role:     "faculty",
		}

		err := uow.UserRepository().Create(context.Background(), user)
		assert.NoError(t, err)

		// Transaction Test
		ctx := context.Background()
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		sessionId := uuid.New()
		session := &model.ChatSession{
			Id:     sessionId,
			UserId: userId,
			Title:  constant.DefaultSessionTitle,
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		msg := &model.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Role:          constant.ChatMessageRoleUser,
			Content:       "What is the class average CGPA?",
		}
		err = uow.ChatMessageRepository().Create(ctx, msg)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		t.Log("Successfully created Session with Message in Transaction")

		// Read back through the specifications used by the service layer.
		history, err := uow.ChatMessageRepository().FindAll(
			context.Background(),
			specification.ByChatSessionId{SessionId: sessionId},
		)
		assert.NoError(t, err)
		assert.Len(t, history, 1)
	})
}
