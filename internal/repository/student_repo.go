package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/models"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	Search        string
	Gender        string
	Course        string
	Qualification string
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

// StudentRepository handles persistence for student records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error)
	Delete(ctx context.Context, id uint) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a repository backed by GORM.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

// sortColumns is the allowlist of sortable fields; anything else falls back
// to created_at.
var sortColumns = map[string]string{
	"name":         "name",
	"created_at":   "created_at",
	"total_amount": "total_amount",
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR mobile_no LIKE ? OR father_name LIKE ?", pattern, pattern, pattern)
	}

	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}

	if filter.Course != "" {
		query = query.Where("courses LIKE ?", "%"+filter.Course+"%")
	}

	if filter.Qualification != "" {
		query = query.Where("qualification LIKE ?", "%"+filter.Qualification+"%")
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var students []models.Student
	if err := query.Order(column + " " + direction).Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&student).Updates(updates).Error; err != nil {
			return models.Student{}, err
		}
	}

	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Student{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
