package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/loom/pkg/repository"
)

func TestMapError(t *testing.T) {
	notFound := errors.New("not found")
	duplicate := errors.New("duplicate")

	t.Run("nil passes through", func(t *testing.T) {
		if err := repository.MapError(nil, notFound, duplicate); err != nil {
			t.Errorf("MapError = %v, want nil", err)
		}
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		err := repository.MapError(fmt.Errorf("find: %w", sql.ErrNoRows), notFound, duplicate)
		if !errors.Is(err, notFound) {
			t.Errorf("MapError = %v, want notFound", err)
		}
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505"}
		err := repository.MapError(fmt.Errorf("insert: %w", pgErr), notFound, duplicate)
		if !errors.Is(err, duplicate) {
			t.Errorf("MapError = %v, want duplicate", err)
		}
	})

	t.Run("other pg errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503"}
		wrapped := fmt.Errorf("insert: %w", pgErr)
		err := repository.MapError(wrapped, notFound, duplicate)
		if !errors.Is(err, pgErr) {
			t.Errorf("MapError = %v, want the original error", err)
		}
		if errors.Is(err, notFound) || errors.Is(err, duplicate) {
			t.Error("unrelated error mapped to a sentinel")
		}
	})
}
