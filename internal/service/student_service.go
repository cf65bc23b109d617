package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

// ErrStudentNotFound signals a missing student record.
var ErrStudentNotFound = errors.New("student not found")

// StudentFiles carries the multipart attachments of a create or update.
type StudentFiles struct {
	Photo     *multipart.FileHeader
	Documents []*multipart.FileHeader
}

// StudentService manages enrollment records.
type StudentService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateStudentRequest, files StudentFiles) (dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, utils.Pagination, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UpdateStudentRequest, files StudentFiles) (dto.StudentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type studentService struct {
	students repository.StudentRepository
	uploads  UploadService
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewStudentService constructs the student record service.
func NewStudentService(students repository.StudentRepository, uploads UploadService, activity ActivityRecorder, logger zerolog.Logger) StudentService {
	return &studentService{
		students: students,
		uploads:  uploads,
		activity: activity,
		logger:   logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, actor Actor, req dto.CreateStudentRequest, files StudentFiles) (dto.StudentResponse, error) {
	student := models.Student{
		Name:          req.Name,
		FatherName:    req.FatherName,
		Qualification: req.Qualification,
		Gender:        req.Gender,
		Courses:       dto.JoinList(req.Courses),
		MobileNo:      req.MobileNo,
		Address:       req.Address,
		TotalAmount:   req.TotalAmount,
	}

	if files.Photo != nil {
		path, err := s.uploads.SaveStudentPhoto(ctx, files.Photo)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.Photo = path
	}

	if len(files.Documents) > 0 {
		paths, err := s.uploads.SaveStudentDocuments(ctx, files.Documents, 0)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.Documents = dto.JoinList(paths)
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, fmt.Errorf("create student: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionCreate,
		Module:      "students",
		Description: fmt.Sprintf("created student %s", student.Name),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Details:     map[string]interface{}{"student_id": student.ID},
	})

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, fmt.Errorf("lookup student: %w", err)
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, utils.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	return dto.NewStudentResponses(students), utils.NewPagination(filter.Page, filter.Limit, total), nil
}

// Update applies partial field changes. A new photo replaces the old one
// outright while new documents are appended to the existing set.
func (s *studentService) Update(ctx context.Context, actor Actor, id uint, req dto.UpdateStudentRequest, files StudentFiles) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, fmt.Errorf("lookup student: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.FatherName != nil {
		updates["father_name"] = *req.FatherName
	}
	if req.Qualification != nil {
		updates["qualification"] = *req.Qualification
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if len(req.Courses) > 0 {
		updates["courses"] = dto.JoinList(req.Courses)
	}
	if req.MobileNo != nil {
		updates["mobile_no"] = *req.MobileNo
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.TotalAmount != nil {
		updates["total_amount"] = *req.TotalAmount
	}

	if files.Photo != nil {
		path, err := s.uploads.SaveStudentPhoto(ctx, files.Photo)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		updates["photo"] = path
	}

	if len(files.Documents) > 0 {
		existing := dto.SplitList(student.Documents)
		paths, err := s.uploads.SaveStudentDocuments(ctx, files.Documents, len(existing))
		if err != nil {
			return dto.StudentResponse{}, err
		}
		updates["documents"] = dto.JoinList(append(existing, paths...))
	}

	updated, err := s.students.Update(ctx, id, updates)
	if err != nil {
		return dto.StudentResponse{}, fmt.Errorf("update student: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionUpdate,
		Module:      "students",
		Description: fmt.Sprintf("updated student %s", updated.Name),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Details:     map[string]interface{}{"student_id": updated.ID},
	})

	return dto.NewStudentResponse(updated), nil
}

// Delete removes the record permanently, unlike account deletion which only
// deactivates.
func (s *studentService) Delete(ctx context.Context, actor Actor, id uint) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("lookup student: %w", err)
	}

	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("delete student: %w", err)
	}

	s.activity.Record(ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionDelete,
		Module:      "students",
		Description: fmt.Sprintf("deleted student %s", student.Name),
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
		Details:     map[string]interface{}{"student_id": student.ID},
	})

	return nil
}
