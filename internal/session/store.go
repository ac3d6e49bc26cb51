package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"chalak/pkg/sentinel"
)

// MemoryRoleStore keeps role grants in process.
type MemoryRoleStore struct {
	mu    sync.RWMutex
	roles map[string]Role
}

func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{roles: make(map[string]Role)}
}

func (m *MemoryRoleStore) Grant(userID string, role Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
}

func (m *MemoryRoleStore) RoleOf(_ context.Context, userID string) (Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[userID]
	if !ok {
		return "", fmt.Errorf("role %s: %w", userID, sentinel.ErrNotFound)
	}
	return role, nil
}

// PostgresRoleStore reads grants from the user_roles relation.
type PostgresRoleStore struct {
	db *sql.DB
}

func NewPostgresRoleStore(db *sql.DB) *PostgresRoleStore {
	return &PostgresRoleStore{db: db}
}

func (s *PostgresRoleStore) RoleOf(ctx context.Context, userID string) (Role, error) {
	const query = `SELECT role FROM user_roles WHERE user_id = $1`

	var role Role
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("role %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
			return "", fmt.Errorf("select role: %w", sentinel.ErrRelationNotFound)
		}
		return "", fmt.Errorf("select role: %w", err)
	}
	return role, nil
}
