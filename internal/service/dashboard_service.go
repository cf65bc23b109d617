package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

const (
	dashboardWindow    = 30 * 24 * time.Hour
	dashboardChartDays = 7
	dashboardRecent    = 5
)

// DashboardService composes the role-dependent dashboard payload.
type DashboardService interface {
	Stats(ctx context.Context, actor Actor) (dto.DashboardResponse, error)
}

type dashboardService struct {
	users    repository.UserRepository
	activity repository.ActivityLogRepository
	redis    *redis.Client
	cacheKey string
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. The Redis client is
// optional; without it every request recomputes the aggregates.
func NewDashboardService(users repository.UserRepository, activity repository.ActivityLogRepository, redisClient *redis.Client, channelBase string, cacheTTL time.Duration, logger zerolog.Logger) DashboardService {
	cacheKey := ""
	if channelBase != "" {
		cacheKey = channelBase + ":dashboard"
	}
	return &dashboardService{
		users:    users,
		activity: activity,
		redis:    redisClient,
		cacheKey: cacheKey,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		tracer:   otel.Tracer("github.com/kavyadav/adminhub-api/internal/service/dashboard"),
		now:      time.Now,
	}
}

func (s *dashboardService) Stats(ctx context.Context, actor Actor) (dto.DashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.stats", trace.WithAttributes(
		attribute.String("dashboard.role", actor.Role),
	))
	defer span.End()

	key := s.key(actor)
	if cached, ok := s.fetchCached(ctx, key); ok {
		return cached, nil
	}

	var (
		response dto.DashboardResponse
		err      error
	)
	if models.IsAdmin(actor.Role) {
		response, err = s.adminStats(ctx)
	} else {
		response, err = s.userStats(ctx, actor.ID)
	}
	if err != nil {
		span.RecordError(err)
		return dto.DashboardResponse{}, err
	}

	s.cache(ctx, key, response)
	return response, nil
}

func (s *dashboardService) adminStats(ctx context.Context) (dto.DashboardResponse, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("count users: %w", err)
	}
	active, err := s.users.CountByStatus(ctx, models.StatusActive)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("count active users: %w", err)
	}

	now := s.now()
	trailing, err := s.users.CountCreatedBetween(ctx, now.Add(-dashboardWindow), now)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("count new users: %w", err)
	}
	previous, err := s.users.CountCreatedBetween(ctx, now.Add(-2*dashboardWindow), now.Add(-dashboardWindow))
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("count previous window: %w", err)
	}
	growth := growthPercent(trailing, previous)

	recent, err := s.activity.Recent(ctx, dashboardRecent, nil)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("recent activity: %w", err)
	}

	chart, err := s.chart(ctx, nil, true)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	return dto.DashboardResponse{
		Stats: []dto.StatCard{
			{Label: "Total Users", Value: total},
			{Label: "Active Users", Value: active},
			{Label: "New Users", Value: trailing, Change: formatGrowth(growth)},
		},
		Chart:            chart,
		RecentActivities: dto.NewActivityLogResponses(recent),
	}, nil
}

func (s *dashboardService) userStats(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	ownCount, err := s.activity.CountSince(ctx, time.Time{}, &userID)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("count own activity: %w", err)
	}

	recent, err := s.activity.Recent(ctx, dashboardRecent, &userID)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("recent activity: %w", err)
	}

	chart, err := s.chart(ctx, &userID, false)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	return dto.DashboardResponse{
		Stats: []dto.StatCard{
			{Label: "My Activities", Value: ownCount},
		},
		Chart:            chart,
		RecentActivities: dto.NewActivityLogResponses(recent),
	}, nil
}

// chart builds the 7-day daily series, oldest day first with today last.
// Signup counts are only meaningful for admin callers and stay zero
// otherwise.
func (s *dashboardService) chart(ctx context.Context, actorID *uint, withSignups bool) ([]dto.ChartPoint, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	points := make([]dto.ChartPoint, 0, dashboardChartDays)
	for i := dashboardChartDays - 1; i >= 0; i-- {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		activities, err := s.activity.CountBetween(ctx, dayStart, dayEnd, actorID)
		if err != nil {
			return nil, fmt.Errorf("count daily activity: %w", err)
		}

		var newUsers int64
		if withSignups {
			newUsers, err = s.users.CountCreatedBetween(ctx, dayStart, dayEnd)
			if err != nil {
				return nil, fmt.Errorf("count daily signups: %w", err)
			}
		}

		points = append(points, dto.ChartPoint{
			Date:       dayStart.Format("2006-01-02"),
			Activities: activities,
			NewUsers:   newUsers,
		})
	}
	return points, nil
}

func (s *dashboardService) key(actor Actor) string {
	if s.cacheKey == "" {
		return ""
	}
	if models.IsAdmin(actor.Role) {
		return s.cacheKey + ":admin"
	}
	return fmt.Sprintf("%s:user:%d", s.cacheKey, actor.ID)
}

func (s *dashboardService) fetchCached(ctx context.Context, key string) (dto.DashboardResponse, bool) {
	if s.redis == nil || key == "" || s.cacheTTL <= 0 {
		return dto.DashboardResponse{}, false
	}

	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return dto.DashboardResponse{}, false
	}

	var cached dto.DashboardResponse
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached dashboard")
		return dto.DashboardResponse{}, false
	}
	return cached, true
}

func (s *dashboardService) cache(ctx context.Context, key string, response dto.DashboardResponse) {
	if s.redis == nil || key == "" || s.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal dashboard for cache")
		return
	}
	if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache dashboard")
	}
}

// growthPercent compares the trailing window to the one before it. An empty
// prior window reads as 100% growth when anything happened at all.
func growthPercent(trailing, previous int64) int {
	if previous == 0 {
		if trailing > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(trailing-previous) / float64(previous) * 100))
}

func formatGrowth(percent int) string {
	if percent >= 0 {
		return fmt.Sprintf("+%d%%", percent)
	}
	return fmt.Sprintf("%d%%", percent)
}
