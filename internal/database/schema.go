package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/university-api/internal/models"
)

// SchemaManager creates and drops the students table.
type SchemaManager struct {
	provider *Provider
	logger   zerolog.Logger
}

// NewSchemaManager constructs a schema manager backed by the provider.
func NewSchemaManager(provider *Provider, logger zerolog.Logger) *SchemaManager {
	return &SchemaManager{
		provider: provider,
		logger:   logger.With().Str("component", "schema_manager").Logger(),
	}
}

// CreateTables creates the students table if it does not exist yet.
func (s *SchemaManager) CreateTables(ctx context.Context) error {
	return s.provider.WithConn(ctx, func(conn *gorm.DB) error {
		migrator := conn.Migrator()
		if migrator.HasTable(&models.Student{}) {
			s.logger.Debug().Msg("students table already exists")
			return nil
		}

		if err := migrator.CreateTable(&models.Student{}); err != nil {
			return fmt.Errorf("failed to create students table: %w", err)
		}

		s.logger.Info().Msg("students table created")
		return nil
	})
}

// DropTables drops the students table if it exists.
func (s *SchemaManager) DropTables(ctx context.Context) error {
	return s.provider.WithConn(ctx, func(conn *gorm.DB) error {
		if err := conn.Migrator().DropTable(&models.Student{}); err != nil {
			return fmt.Errorf("failed to drop students table: %w", err)
		}

		s.logger.Info().Msg("students table dropped")
		return nil
	})
}

// CreateTablesAsync runs CreateTables in the background and delivers its result on the returned channel.
// Failures are logged; request serving does not wait for the schema.
func (s *SchemaManager) CreateTablesAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := s.CreateTables(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create students table")
		}
		done <- err
	}()
	return done
}
