package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/observability"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

const recordTimeout = 5 * time.Second

// ActivityEntry captures everything needed to persist one audit entry. Actor
// name and role are snapshotted so entries survive later account edits.
type ActivityEntry struct {
	ActorID     uint
	ActorName   string
	ActorRole   string
	Action      string
	Module      string
	Description string
	IPAddress   string
	UserAgent   string
	Details     map[string]interface{}
}

// ActivityRecorder is the write side of the audit trail. Record never reports
// failure to the caller.
type ActivityRecorder interface {
	Record(entry ActivityEntry)
}

// ActivityService records and queries the append-only audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, filter repository.ActivityLogFilter) ([]dto.ActivityLogResponse, utils.Pagination, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

// Record persists an audit entry on a detached goroutine. Failures are logged
// and swallowed so the primary operation never blocks or fails on audit
// bookkeeping.
func (s *activityService) Record(entry ActivityEntry) {
	if entry.Action == "" {
		entry.Action = models.ActionOther
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		log := models.ActivityLog{
			ActorID:     entry.ActorID,
			ActorName:   entry.ActorName,
			ActorRole:   entry.ActorRole,
			Action:      entry.Action,
			Module:      entry.Module,
			Description: entry.Description,
			IPAddress:   entry.IPAddress,
			UserAgent:   entry.UserAgent,
		}
		if len(entry.Details) > 0 {
			log.Details = datatypes.JSONMap(entry.Details)
		}

		if err := s.repo.Create(ctx, &log); err != nil {
			s.logger.Warn().Err(err).
				Uint("actor_id", entry.ActorID).
				Str("action", entry.Action).
				Str("module", entry.Module).
				Msg("failed to record activity entry")
			return
		}
		observability.ActivityEntries().WithLabelValues(entry.Action).Inc()
	}()
}

func (s *activityService) List(ctx context.Context, filter repository.ActivityLogFilter) ([]dto.ActivityLogResponse, utils.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	return dto.NewActivityLogResponses(entries), utils.NewPagination(filter.Page, filter.Limit, total), nil
}
