package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

var (
	// ErrUserNotFound signals a missing or invisible account.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken signals an email uniqueness conflict.
	ErrEmailTaken = errors.New("email is already registered")
)

// AdminNotifier is the slice of the notification service that broadcasts to
// every admin-level account.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, title, message, notifType string)
}

// UserService manages accounts with role-scoped visibility.
type UserService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateUserRequest) (dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	List(ctx context.Context, callerRole string, filter repository.UserFilter) ([]dto.UserResponse, utils.Pagination, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UpdateUserRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

// Actor identifies the authenticated account behind a mutation. The fields
// feed audit entries and notifications.
type Actor struct {
	ID        uint
	Name      string
	Role      string
	IPAddress string
	UserAgent string
}

type userService struct {
	users    repository.UserRepository
	activity ActivityRecorder
	notifier AdminNotifier
	logger   zerolog.Logger
}

// NewUserService constructs the account management service.
func NewUserService(users repository.UserRepository, activity ActivityRecorder, notifier AdminNotifier, logger zerolog.Logger) UserService {
	return &userService{
		users:    users,
		activity: activity,
		notifier: notifier,
		logger:   logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Create(ctx context.Context, actor Actor, req dto.CreateUserRequest) (dto.UserResponse, error) {
	taken, err := s.users.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return dto.UserResponse{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     req.Role,
		Status:   req.Status,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, fmt.Errorf("create user: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionCreate,
		Module:      "users",
		Description: fmt.Sprintf("created user %s (%s)", user.Name, user.Email),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Details:     map[string]interface{}{"user_id": user.ID, "role": user.Role},
	})

	if s.notifier != nil {
		s.notifier.NotifyAdmins(ctx, "New user created",
			fmt.Sprintf("%s created a new %s account for %s", actor.Name, user.Role, user.Name),
			models.NotificationInfo)
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("lookup user: %w", err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, callerRole string, filter repository.UserFilter) ([]dto.UserResponse, utils.Pagination, error) {
	filter.CallerRole = callerRole
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	return dto.NewUserResponses(users), utils.NewPagination(filter.Page, filter.Limit, total), nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id uint, req dto.UpdateUserRequest) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.users.EmailTaken(ctx, *req.Email, user.ID)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return dto.UserResponse{}, ErrEmailTaken
		}
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
		}
		updates["password"] = string(hash)
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	updated, err := s.users.Update(ctx, id, updates)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("update user: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionUpdate,
		Module:      "users",
		Description: fmt.Sprintf("updated user %s (%s)", updated.Name, updated.Email),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Details:     map[string]interface{}{"user_id": updated.ID},
	})

	return dto.NewUserResponse(updated), nil
}

// Delete deactivates an account. Rows stay behind for the audit trail and
// past notifications.
func (s *userService) Delete(ctx context.Context, actor Actor, id uint) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.users.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionDelete,
		Module:      "users",
		Description: fmt.Sprintf("deactivated user %s (%s)", user.Name, user.Email),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Details:     map[string]interface{}{"user_id": user.ID},
	})

	return nil
}
