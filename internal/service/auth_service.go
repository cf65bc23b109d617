package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords so
	// the login response never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive rejects logins for deactivated accounts.
	ErrAccountInactive = errors.New("account is deactivated")
)

// UserNotifier is the slice of the notification service the auth flow needs.
type UserNotifier interface {
	NotifyUser(ctx context.Context, userID uint, title, message, notifType string)
}

// AuthService issues sessions and resolves the authenticated profile.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, ip, userAgent string) (dto.LoginResponse, error)
	Profile(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users    repository.UserRepository
	activity ActivityRecorder
	notifier UserNotifier
	secret   []byte
	tokenTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService constructs the session issuer.
func NewAuthService(users repository.UserRepository, activity ActivityRecorder, notifier UserNotifier, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		activity: activity,
		notifier: notifier,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger.With().Str("component", "auth_service").Logger(),
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, ip, userAgent string) (dto.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if user.Status != models.StatusActive {
		return dto.LoginResponse{}, ErrAccountInactive
	}

	token, err := s.signToken(user)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     user.ID,
		ActorName:   user.Name,
		ActorRole:   user.Role,
		Action:      models.ActionLogin,
		Module:      "auth",
		Description: fmt.Sprintf("%s logged in", user.Name),
		IPAddress:   ip,
		UserAgent:   userAgent,
	})

	if s.notifier != nil {
		s.notifier.NotifyUser(ctx, user.ID, "Welcome back", fmt.Sprintf("Welcome back, %s!", user.Name), models.NotificationInfo)
	}

	return dto.LoginResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("lookup account: %w", err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) signToken(user models.User) (string, error) {
	issuedAt := s.now()
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
