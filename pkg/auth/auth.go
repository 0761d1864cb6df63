// Package auth issues and resolves login sessions and defines the role
// model used to gate the admin surface. Sessions are opaque tokens stored in
// Redis; passwords are bcrypt hashes in the users table.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesham156/wafarle/pkg/models"
	"github.com/hesham156/wafarle/pkg/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserInactive       = errors.New("user account is disabled")
	ErrSessionNotFound    = errors.New("session not found")
)

type Service struct {
	db         *gorm.DB
	redis      *repository.RedisRepository
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewService(db *gorm.DB, rdb *repository.RedisRepository, sessionTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		db:         db,
		redis:      rdb,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, name, email, phone, password string) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         RoleUser,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("email", email))
	return user, nil
}

// Login verifies credentials and opens a session in Redis.
func (s *Service) Login(ctx context.Context, email, password string) (*repository.Session, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session := &repository.Session{
		Token:  uuid.NewString(),
		UserID: user.ID,
		Role:   user.Role,
	}
	if err := s.redis.SaveSession(ctx, session, s.sessionTTL); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return session, &user, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.redis.DeleteSession(ctx, token)
}

// SessionFromToken resolves a session token. Resolution happens once per
// request; the cart backend is chosen from the result and never re-queried
// mid-flow.
func (s *Service) SessionFromToken(ctx context.Context, token string) (*repository.Session, error) {
	session, err := s.redis.GetSession(ctx, token)
	if err != nil {
		if repository.IsNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}
