// Package dbtest builds throwaway SQLite-backed providers for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/noah-isme/university-api/internal/database"
)

// NewProvider returns a provider over a private in-memory SQLite database.
func NewProvider(t *testing.T) *database.Provider {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	provider := database.NewProvider(sqlite.Open(dsn), database.RetryPolicy{Delay: time.Millisecond, MaxAttempts: 1}, zerolog.Nop())
	t.Cleanup(func() {
		_ = provider.Close()
	})

	return provider
}

// NewProviderWithSchema returns a provider whose students table already exists.
func NewProviderWithSchema(t *testing.T) *database.Provider {
	t.Helper()

	provider := NewProvider(t)
	schema := database.NewSchemaManager(provider, zerolog.Nop())
	require.NoError(t, schema.CreateTables(context.Background()))

	return provider
}
