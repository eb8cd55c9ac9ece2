package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/university-api/internal/database"
	"github.com/noah-isme/university-api/internal/models"
)

// ErrNoRowReturned indicates a statement expected to return a row produced none.
var ErrNoRowReturned = errors.New("statement returned no row")

const insertStudentSQL = "INSERT INTO students (first_name, last_name) VALUES (?, ?) RETURNING id, first_name, last_name"

// ConnProvider hands out scoped store connections.
type ConnProvider interface {
	WithConn(ctx context.Context, fn func(conn *gorm.DB) error) error
}

// StudentRepository provides access to student records.
type StudentRepository interface {
	Create(ctx context.Context, firstName, lastName string) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type studentRepository struct {
	provider ConnProvider
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(provider ConnProvider) StudentRepository {
	return &studentRepository{provider: provider}
}

var _ ConnProvider = (*database.Provider)(nil)

func (r *studentRepository) Create(ctx context.Context, firstName, lastName string) (models.Student, error) {
	var created []models.Student
	err := r.provider.WithConn(ctx, func(conn *gorm.DB) error {
		return conn.Raw(insertStudentSQL, firstName, lastName).Scan(&created).Error
	})
	if err != nil {
		return models.Student{}, err
	}

	if len(created) == 0 {
		return models.Student{}, ErrNoRowReturned
	}

	return created[0], nil
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	students := make([]models.Student, 0)
	err := r.provider.WithConn(ctx, func(conn *gorm.DB) error {
		return conn.Find(&students).Error
	})
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var affected int64
	err := r.provider.WithConn(ctx, func(conn *gorm.DB) error {
		result := conn.Delete(&models.Student{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}
