package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"zheliyou/internal/remote"
	"zheliyou/internal/utils"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS auth_users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'authenticated',
		user_metadata JSON NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_auth_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti CHAR(36) NOT NULL PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		expires_at DATETIME NOT NULL,
		KEY idx_revoked_tokens_expires (expires_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		id CHAR(36) NOT NULL PRIMARY KEY,
		username VARCHAR(64) NOT NULL,
		full_name VARCHAR(255) NULL,
		avatar_url VARCHAR(512) NULL,
		bio TEXT NULL,
		gender VARCHAR(16) NULL,
		age INT NULL,
		city VARCHAR(128) NULL,
		interests JSON NULL,
		travel_style VARCHAR(64) NULL,
		created_at DATETIME NULL,
		updated_at DATETIME NULL,
		UNIQUE KEY uq_user_profiles_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS trips (
		id CHAR(36) NOT NULL PRIMARY KEY,
		creator_id CHAR(36) NOT NULL,
		title VARCHAR(255) NOT NULL,
		destination VARCHAR(255) NOT NULL,
		description TEXT NULL,
		start_date DATE NULL,
		end_date DATE NULL,
		budget DECIMAL(12,2) NULL,
		max_members INT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'planning',
		created_at DATETIME NULL,
		updated_at DATETIME NULL,
		KEY idx_trips_creator (creator_id),
		KEY idx_trips_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS matches (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		matched_user_id CHAR(36) NOT NULL,
		trip_id CHAR(36) NULL,
		score DECIMAL(5,2) NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at DATETIME NULL,
		updated_at DATETIME NULL,
		KEY idx_matches_user (user_id),
		KEY idx_matches_matched (matched_user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS attractions (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		city VARCHAR(128) NOT NULL,
		category VARCHAR(64) NULL,
		description TEXT NULL,
		image_url VARCHAR(512) NULL,
		rating DECIMAL(3,2) NULL,
		price DECIMAL(10,2) NULL,
		created_at DATETIME NULL,
		KEY idx_attractions_city (city)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables. Existing tables are left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	for _, stmt := range migrations {
		if _, err := s.db().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	s.schema.reset()
	utils.LogEvent("", "sqlstore", "migrate", fmt.Sprintf("ensured %d tables", len(migrations)))
	return nil
}

// schemaCache keeps column name -> data type per table, read from
// information_schema on first use.
type schemaCache struct {
	mu     sync.Mutex
	tables map[string]map[string]string
}

func (c *schemaCache) get(table string) (map[string]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cols, ok := c.tables[table]
	return cols, ok
}

func (c *schemaCache) put(table string, cols map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tables == nil {
		c.tables = map[string]map[string]string{}
	}
	c.tables[table] = cols
}

func (c *schemaCache) reset() {
	c.mu.Lock()
	c.tables = nil
	c.mu.Unlock()
}

func (s *Store) columns(ctx context.Context, table string) (map[string]string, error) {
	if cols, ok := s.schema.get(table); ok {
		return cols, nil
	}

	rows, err := s.db().QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
	`, table)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	cols := map[string]string{}
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		cols[name] = strings.ToLower(dataType)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, &remote.ServiceError{
			Status:  404,
			Code:    "PGRST205",
			Message: fmt.Sprintf("Could not find the table '%s.%s' in the schema cache", Schema, table),
		}
	}
	s.schema.put(table, cols)
	return cols, nil
}
