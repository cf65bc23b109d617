package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/models"
)

// ActivityLogFilter narrows activity log queries.
type ActivityLogFilter struct {
	Page    int
	Limit   int
	Search  string
	Module  string
	Action  string
	ActorID *uint
}

// ActionCount is an aggregate bucket grouped by action.
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// ModuleCount is an aggregate bucket grouped by module.
type ModuleCount struct {
	Module string `json:"module"`
	Count  int64  `json:"count"`
}

// ActorCount ranks actors by number of entries.
type ActorCount struct {
	ActorID   uint   `json:"actor_id"`
	ActorName string `json:"actor_name"`
	Count     int64  `json:"count"`
}

// ActivityLogRepository persists the append-only audit trail. There is no
// update or delete: entries are immutable once written.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	Recent(ctx context.Context, limit int, actorID *uint) ([]models.ActivityLog, error)
	CountSince(ctx context.Context, since time.Time, actorID *uint) (int64, error)
	CountBetween(ctx context.Context, from, to time.Time, actorID *uint) (int64, error)
	GroupByAction(ctx context.Context, since *time.Time, actorID *uint) ([]ActionCount, error)
	GroupByModule(ctx context.Context, since *time.Time) ([]ModuleCount, error)
	TopActors(ctx context.Context, since time.Time, limit int) ([]ActorCount, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("actor_name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) Recent(ctx context.Context, limit int, actorID *uint) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 5
	}

	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if actorID != nil {
		query = query.Where("actor_id = ?", *actorID)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *activityLogRepository) CountSince(ctx context.Context, since time.Time, actorID *uint) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Where("created_at >= ?", since)
	if actorID != nil {
		query = query.Where("actor_id = ?", *actorID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *activityLogRepository) CountBetween(ctx context.Context, from, to time.Time, actorID *uint) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("created_at >= ? AND created_at < ?", from, to)
	if actorID != nil {
		query = query.Where("actor_id = ?", *actorID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *activityLogRepository) GroupByAction(ctx context.Context, since *time.Time, actorID *uint) ([]ActionCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("action, COUNT(*) AS count").
		Group("action")
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if actorID != nil {
		query = query.Where("actor_id = ?", *actorID)
	}

	var rows []ActionCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityLogRepository) GroupByModule(ctx context.Context, since *time.Time) ([]ModuleCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("module, COUNT(*) AS count").
		Group("module")
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	var rows []ModuleCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityLogRepository) TopActors(ctx context.Context, since time.Time, limit int) ([]ActorCount, error) {
	if limit <= 0 {
		limit = 5
	}

	var rows []ActorCount
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("actor_id, actor_name, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("actor_id").
		Group("actor_name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
