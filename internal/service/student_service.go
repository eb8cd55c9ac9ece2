package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/university-api/internal/dto"
	"github.com/noah-isme/university-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the students table holds no rows.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentCreateFailed indicates the insert succeeded without returning the new row.
	ErrStudentCreateFailed = errors.New("error creating student")
)

// StudentService exposes the student enrollment use cases.
type StudentService interface {
	Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Delete(ctx context.Context, id int64) error
}

type studentService struct {
	repo      repository.StudentRepository
	validator *validator.Validate
	events    *EventPublisher
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewStudentService constructs the student service. events may be nil.
func NewStudentService(repo repository.StudentRepository, validator *validator.Validate, events *EventPublisher, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		validator: validator,
		events:    events,
		logger:    logger.With().Str("component", "student_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/university-api/internal/service/student"),
	}
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.create")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.StudentResponse{}, err
	}

	student, err := s.repo.Create(ctx, req.FirstName, req.LastName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		if errors.Is(err, repository.ErrNoRowReturned) {
			return dto.StudentResponse{}, ErrStudentCreateFailed
		}
		return dto.StudentResponse{}, err
	}

	span.SetAttributes(attribute.Int64("student.id", student.ID))
	response := dto.NewStudentResponse(student)
	s.events.StudentCreated(ctx, response)

	return response, nil
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.list")
	defer span.End()

	students, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	// An empty table is reported as not found rather than an empty list.
	if len(students) == 0 {
		return nil, ErrStudentNotFound
	}

	span.SetAttributes(attribute.Int("student.count", len(students)))
	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}

	return responses, nil
}

func (s *studentService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "student.delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("student.id", id))

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}

	if affected == 0 {
		s.logger.Debug().Int64("student_id", id).Msg("delete matched no student")
		return nil
	}

	s.events.StudentDeleted(ctx, id)
	return nil
}
