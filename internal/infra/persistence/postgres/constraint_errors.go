package postgres

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PostgreSQL error codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// Constraint names declared by the migrations.
const (
	constraintUsersUsername      = "users_username_key"
	constraintUsersEmail         = "users_email_key"
	constraintOauthClientsKey    = "oauth_clients_key_key"
	constraintLinksCurrentRemote = "links_current_remote_key"
	constraintLinksCurrentUser   = "links_current_user_server_key"
)

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}

	return nil, false
}

// uniqueViolation reports a unique constraint failure and, when the driver
// error is still available, the name of the violated constraint.
func uniqueViolation(err error) (constraint string, ok bool) {
	if pgErr, isPg := asPgError(err); isPg && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}

	// Translated errors lose the constraint name.
	return "", errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyConstraintViolation(err error) bool {
	if pgErr, ok := asPgError(err); ok && pgErr.Code == pgForeignKeyViolation {
		return true
	}

	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

func isNotNullConstraintViolation(err error) bool {
	pgErr, ok := asPgError(err)

	return ok && pgErr.Code == pgNotNullViolation
}

func isCheckConstraintViolation(err error) bool {
	if pgErr, ok := asPgError(err); ok && pgErr.Code == pgCheckViolation {
		return true
	}

	return errors.Is(err, gorm.ErrCheckConstraintViolated)
}
