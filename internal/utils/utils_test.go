package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsPGUniqueViolation(t *testing.T) {
	require.True(t, IsPGUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.True(t, IsPGUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, IsPGUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsPGUniqueViolation(errors.New("boom")))
	require.False(t, IsPGUniqueViolation(nil))
}

func TestNormalizeIdentifier(t *testing.T) {
	require.Equal(t, "alice@x.com", NormalizeIdentifier("  Alice@X.com "))
	require.Equal(t, "", NormalizeIdentifier("   "))
}

func TestContainsPattern(t *testing.T) {
	require.Equal(t, "%%", ContainsPattern(""))
	require.Equal(t, "%cat%", ContainsPattern("cat"))
	require.Equal(t, `%100\%%`, ContainsPattern("100%"))
	require.Equal(t, `%snake\_case%`, ContainsPattern("snake_case"))
	require.Equal(t, `%a\\b%`, ContainsPattern(`a\b`))
}
