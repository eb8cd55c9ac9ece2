package dto

import "github.com/noah-isme/university-api/internal/models"

// StudentCreateRequest captures the payload for enrolling a student.
type StudentCreateRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// StudentResponse serializes a stored student.
type StudentResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// MessageResponse carries a single status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewStudentResponse maps a student model to its API representation.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:        student.ID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
	}
}
