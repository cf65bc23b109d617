package dto

import (
	"strings"
	"time"

	"github.com/kavyadav/adminhub-api/internal/models"
)

// StudentResponse serializes a student record. Courses and documents are
// returned as lists even though they are stored comma-joined.
type StudentResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	FatherName    string    `json:"father_name"`
	Qualification string    `json:"qualification"`
	Gender        string    `json:"gender"`
	Courses       []string  `json:"courses"`
	MobileNo      string    `json:"mobile_no"`
	Address       string    `json:"address"`
	Photo         string    `json:"photo,omitempty"`
	Documents     []string  `json:"documents"`
	TotalAmount   float64   `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewStudentResponse maps a student model to its response shape.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:            student.ID,
		Name:          student.Name,
		FatherName:    student.FatherName,
		Qualification: student.Qualification,
		Gender:        student.Gender,
		Courses:       SplitList(student.Courses),
		MobileNo:      student.MobileNo,
		Address:       student.Address,
		Photo:         student.Photo,
		Documents:     SplitList(student.Documents),
		TotalAmount:   student.TotalAmount,
		CreatedAt:     student.CreatedAt,
		UpdatedAt:     student.UpdatedAt,
	}
}

// NewStudentResponses maps a slice of student models.
func NewStudentResponses(students []models.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		out = append(out, NewStudentResponse(student))
	}
	return out
}

// CreateStudentRequest captures the form fields of a student creation. Photo
// and documents arrive as multipart files.
type CreateStudentRequest struct {
	Name          string   `form:"name" validate:"required,min=2,max=255"`
	FatherName    string   `form:"father_name" validate:"required,min=2,max=255"`
	Qualification string   `form:"qualification" validate:"required"`
	Gender        string   `form:"gender" validate:"required,oneof=male female other"`
	Courses       []string `form:"courses" validate:"required,min=1,dive,required"`
	MobileNo      string   `form:"mobile_no" validate:"required,min=7,max=20"`
	Address       string   `form:"address" validate:"required"`
	TotalAmount   float64  `form:"total_amount" validate:"gte=0"`
}

// UpdateStudentRequest captures partial student updates.
type UpdateStudentRequest struct {
	Name          *string  `form:"name" validate:"omitempty,min=2,max=255"`
	FatherName    *string  `form:"father_name" validate:"omitempty,min=2,max=255"`
	Qualification *string  `form:"qualification" validate:"omitempty"`
	Gender        *string  `form:"gender" validate:"omitempty,oneof=male female other"`
	Courses       []string `form:"courses" validate:"omitempty,dive,required"`
	MobileNo      *string  `form:"mobile_no" validate:"omitempty,min=7,max=20"`
	Address       *string  `form:"address" validate:"omitempty"`
	TotalAmount   *float64 `form:"total_amount" validate:"omitempty,gte=0"`
}

// SplitList decodes a comma-joined string column into a slice, dropping empty
// segments.
func SplitList(joined string) []string {
	if joined == "" {
		return []string{}
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinList encodes a slice into the comma-joined column format.
func JoinList(values []string) string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, ",")
}
