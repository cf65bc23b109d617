package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

const (
	reportWindow    = 30 * 24 * time.Hour
	reportTopActors = 5
)

// ReportService aggregates the audit trail for the reporting views.
type ReportService interface {
	Stats(ctx context.Context, actor Actor) (dto.ReportStatsResponse, error)
	UserReport(ctx context.Context, actor Actor, userID uint, page, limit int) (dto.UserReportResponse, utils.Pagination, error)
}

type reportService struct {
	users    repository.UserRepository
	activity repository.ActivityLogRepository
	recorder ActivityRecorder
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewReportService constructs the reporting service.
func NewReportService(users repository.UserRepository, activity repository.ActivityLogRepository, recorder ActivityRecorder, logger zerolog.Logger) ReportService {
	return &reportService{
		users:    users,
		activity: activity,
		recorder: recorder,
		logger:   logger.With().Str("component", "report_service").Logger(),
		tracer:   otel.Tracer("github.com/kavyadav/adminhub-api/internal/service/report"),
		now:      time.Now,
	}
}

func (s *reportService) Stats(ctx context.Context, actor Actor) (dto.ReportStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reports.stats")
	defer span.End()

	total, err := s.users.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.ReportStatsResponse{}, fmt.Errorf("count users: %w", err)
	}
	active, err := s.users.CountByStatus(ctx, models.StatusActive)
	if err != nil {
		span.RecordError(err)
		return dto.ReportStatsResponse{}, fmt.Errorf("count active users: %w", err)
	}

	since := s.now().Add(-reportWindow)
	activityCount, err := s.activity.CountSince(ctx, since, nil)
	if err != nil {
		span.RecordError(err)
		return dto.ReportStatsResponse{}, fmt.Errorf("count activity: %w", err)
	}
	byAction, err := s.activity.GroupByAction(ctx, &since, nil)
	if err != nil {
		span.RecordError(err)
		return dto.ReportStatsResponse{}, fmt.Errorf("group by action: %w", err)
	}
	byModule, err := s.activity.GroupByModule(ctx, &since)
	if err != nil {
		span.RecordError(err)
		return dto.ReportStatsResponse{}, fmt.Errorf("group by module: %w", err)
	}
	topActors, err := s.activity.TopActors(ctx, since, reportTopActors)
	if err != nil {
		span.RecordError(err)
		return dto.ReportStatsResponse{}, fmt.Errorf("rank actors: %w", err)
	}

	s.recorder.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionView,
		Module:      "reports",
		Description: "viewed system report",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return dto.ReportStatsResponse{
		Users: dto.UserTotals{
			Total:    total,
			Active:   active,
			Inactive: total - active,
		},
		ActivityCount: activityCount,
		ByAction:      byAction,
		ByModule:      byModule,
		TopActors:     topActors,
	}, nil
}

func (s *reportService) UserReport(ctx context.Context, actor Actor, userID uint, page, limit int) (dto.UserReportResponse, utils.Pagination, error) {
	ctx, span := s.tracer.Start(ctx, "reports.user", trace.WithAttributes(
		attribute.Int64("report.user_id", int64(userID)),
	))
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserReportResponse{}, utils.Pagination{}, ErrUserNotFound
		}
		span.RecordError(err)
		return dto.UserReportResponse{}, utils.Pagination{}, fmt.Errorf("lookup user: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, total, err := s.activity.List(ctx, repository.ActivityLogFilter{
		Page:    page,
		Limit:   limit,
		ActorID: &userID,
	})
	if err != nil {
		span.RecordError(err)
		return dto.UserReportResponse{}, utils.Pagination{}, fmt.Errorf("list activity: %w", err)
	}

	byAction, err := s.activity.GroupByAction(ctx, nil, &userID)
	if err != nil {
		span.RecordError(err)
		return dto.UserReportResponse{}, utils.Pagination{}, fmt.Errorf("group by action: %w", err)
	}

	s.recorder.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionView,
		Module:      "reports",
		Description: fmt.Sprintf("viewed activity report for %s", user.Name),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Details:     map[string]interface{}{"user_id": user.ID},
	})

	return dto.UserReportResponse{
		User:       dto.NewUserResponse(user),
		Activities: dto.NewActivityLogResponses(entries),
		ByAction:   byAction,
	}, utils.NewPagination(page, limit, total), nil
}
