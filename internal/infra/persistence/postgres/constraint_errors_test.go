package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantConstraint string
		wantOK         bool
	}{
		{
			name:           "pg error",
			err:            &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintUsersUsername},
			wantConstraint: constraintUsersUsername,
			wantOK:         true,
		},
		{
			name:           "wrapped pg error",
			err:            errors.Wrap(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintLinksCurrentRemote}, "insert"),
			wantConstraint: constraintLinksCurrentRemote,
			wantOK:         true,
		},
		{
			name:   "translated gorm error",
			err:    fmt.Errorf("create: %w", gorm.ErrDuplicatedKey),
			wantOK: true,
		},
		{
			name: "other pg error",
			err:  &pgconn.PgError{Code: pgForeignKeyViolation},
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraint, ok := uniqueViolation(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantConstraint, constraint)
		})
	}
}

func TestConstraintViolationPredicates(t *testing.T) {
	assert.True(t, isForeignKeyConstraintViolation(&pgconn.PgError{Code: pgForeignKeyViolation}))
	assert.True(t, isForeignKeyConstraintViolation(gorm.ErrForeignKeyViolated))
	assert.False(t, isForeignKeyConstraintViolation(&pgconn.PgError{Code: pgUniqueViolation}))

	assert.True(t, isNotNullConstraintViolation(&pgconn.PgError{Code: pgNotNullViolation}))
	assert.False(t, isNotNullConstraintViolation(errors.New("boom")))

	assert.True(t, isCheckConstraintViolation(&pgconn.PgError{Code: pgCheckViolation}))
	assert.True(t, isCheckConstraintViolation(gorm.ErrCheckConstraintViolated))
	assert.False(t, isCheckConstraintViolation(&pgconn.PgError{Code: pgNotNullViolation}))
}
