package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baedalgo/delivery/internal/core/domain"
)

// MySQLUserDirectory resolves actor roles from the users table.
type MySQLUserDirectory struct {
	db *sql.DB
}

func NewMySQLUserDirectory(db *sql.DB) *MySQLUserDirectory {
	return &MySQLUserDirectory{db: db}
}

func (d *MySQLUserDirectory) GetRole(ctx context.Context, userID string) (domain.Role, error) {
	var role domain.Role
	err := d.db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id = ?`, userID,
	).Scan(&role)

	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user role: %w", err)
	}
	return role, nil
}
