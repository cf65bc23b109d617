package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

// ErrPasswordMismatch rejects a password change with a wrong current password.
var ErrPasswordMismatch = errors.New("current password is incorrect")

// ProfileService covers self-service operations on the caller's own account.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.UserResponse, error)
	Update(ctx context.Context, actor Actor, req dto.UpdateProfileRequest, avatar *multipart.FileHeader) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor Actor, req dto.ChangePasswordRequest) error
}

type profileService struct {
	users    repository.UserRepository
	uploads  UploadService
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewProfileService constructs the self-service profile service.
func NewProfileService(users repository.UserRepository, uploads UploadService, activity ActivityRecorder, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:    users,
		uploads:  uploads,
		activity: activity,
		logger:   logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("lookup account: %w", err)
	}
	return dto.NewUserResponse(user), nil
}

func (s *profileService) Update(ctx context.Context, actor Actor, req dto.UpdateProfileRequest, avatar *multipart.FileHeader) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("lookup account: %w", err)
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

	if avatar != nil {
		path, err := s.uploads.SaveAvatar(ctx, avatar)
		if err != nil {
			return dto.UserResponse{}, err
		}
		updates["avatar"] = path
	}

	updated, err := s.users.Update(ctx, actor.ID, updates)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("update profile: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   updated.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionUpdate,
		Module:      "profile",
		Description: "updated own profile",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return dto.NewUserResponse(updated), nil
}

func (s *profileService) ChangePassword(ctx context.Context, actor Actor, req dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.users.Update(ctx, actor.ID, map[string]interface{}{"password": string(hash)}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   user.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionUpdate,
		Module:      "profile",
		Description: "changed own password",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return nil
}
