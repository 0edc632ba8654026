package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"messenger-api/config/common"
	applogger "messenger-api/config/logger"
	"messenger-api/dto"
	"messenger-api/entity"
	"messenger-api/mail"
	"messenger-api/repository"
	"messenger-api/security"
)

type capturePublisher struct {
	mu    sync.Mutex
	codes map[string]string
}

func (p *capturePublisher) PublishOtp(ctx context.Context, m mail.OtpMail) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.codes == nil {
		p.codes = map[string]string{}
	}
	p.codes[m.Email] = m.Code
	return nil
}

func (p *capturePublisher) code(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.codes[email]
}

type sentEvent struct {
	UserID string
	Event  dto.Event
}

type captureNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *captureNotifier) Notify(userID string, event dto.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Event: event})
}

func (n *captureNotifier) last() sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return sentEvent{}
	}
	return n.events[len(n.events)-1]
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return nil
}

func (s *memoryStore) URL(ctx context.Context, key string) (string, error) {
	return "http://files.test/" + key, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStore) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, "http://files.test/") {
		return "", false
	}
	return strings.TrimPrefix(url, "http://files.test/"), true
}

func (s *memoryStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

type fixture struct {
	DB        *gorm.DB
	Users     *repository.UserRepository
	Contacts  *repository.ContactRepository
	Messages  *repository.MessageRepository
	Publisher *capturePublisher
	Notifier  *captureNotifier
	Store     *memoryStore
	JWT       *security.JWT

	Auth    AuthUsecase
	User    UserUsecase
	Contact ContactUsecase
	Message *MessageUsecaseImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "t_",
			SingularTable: true,
		},
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Contact{}, &entity.Message{}, &entity.Reaction{}))

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	v := viper.New()
	v.Set("JWT_SECRET", "test-secret-0123456789abcdef0123")
	cfg := common.NewConfig(v)

	store, err := security.NewOtpStore(client, "test", cfg.GetOtpConfig())
	require.NoError(t, err)
	limiter, err := security.NewRateLimiter(client, "test:ratelimit", 3, time.Minute)
	require.NoError(t, err)

	log := applogger.NewNopLogger()
	validate := validator.New()

	jwtService, err := security.NewJWT(cfg)
	require.NoError(t, err)

	f := &fixture{
		DB:        db,
		Users:     repository.NewUserRepository(),
		Contacts:  repository.NewContactRepository(),
		Messages:  repository.NewMessageRepository(),
		Publisher: &capturePublisher{},
		Notifier:  &captureNotifier{},
		Store:     &memoryStore{},
		JWT:       jwtService,
	}
	otp := NewOtpIssuer(store, limiter, f.Publisher, log)

	f.Auth = NewAuthUsecase(f.Users, validate, db, log, f.JWT, otp)
	f.User = NewUserUsecase(f.Users, validate, db, log, otp)
	f.Contact = NewContactUsecase(f.Contacts, f.Users, f.Messages, validate, db, log, f.Notifier)
	f.Message = NewMessageUsecase(f.Messages, f.Users, validate, db, log, f.Notifier, f.Store).(*MessageUsecaseImpl)
	return f
}

func (f *fixture) createUser(t *testing.T, email string) security.Principal {
	t.Helper()
	user := &entity.User{Email: email, IsVerified: true}
	require.NoError(t, f.Users.Save(context.Background(), f.DB, user))
	return security.Principal{UserID: user.ID, Email: user.Email}
}

func (f *fixture) createMessage(t *testing.T, from, to security.Principal, text string, at time.Time) *entity.Message {
	t.Helper()
	message := &entity.Message{
		BaseEntity: entity.BaseEntity{CreatedAt: at.UTC(), UpdatedAt: at.UTC()},
		SenderID:   from.UserID,
		ReceiverID: to.UserID,
		Text:       text,
		Status:     "sent",
	}
	require.NoError(t, f.Messages.Save(context.Background(), f.DB, message))
	return message
}

func imageBody(size int) io.Reader {
	return bytes.NewReader(make([]byte, size))
}
