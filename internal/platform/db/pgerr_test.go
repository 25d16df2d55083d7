package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	require.True(t, IsUniqueViolation(err))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23514"}))
	require.False(t, IsUniqueViolation(errors.New("plain")))
}

func TestIsCheckViolation(t *testing.T) {
	err := fmt.Errorf("update: %w", &pgconn.PgError{Code: "23514", ConstraintName: "products_quantity_check"})

	require.True(t, IsCheckViolation(err, "products_quantity_check"))
	require.True(t, IsCheckViolation(err, ""))
	require.False(t, IsCheckViolation(err, "another_check"))
	require.False(t, IsCheckViolation(&pgconn.PgError{Code: "23505"}, ""))
	require.False(t, IsCheckViolation(errors.New("plain"), ""))
}
