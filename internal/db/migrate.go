package db

import (
	"context"
	"fmt"

	"github.com/marshallshelly/pebble-orm/pkg/builder"
)

// Migrate applies the schema. Statements run one at a time because pgx
// does not accept multi-statement strings over the extended protocol.
func Migrate(ctx context.Context, qb *builder.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(150) UNIQUE NOT NULL,
			email VARCHAR(320) UNIQUE NOT NULL,
			first_name VARCHAR(150) NOT NULL DEFAULT '',
			last_name VARCHAR(150) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(256) NOT NULL,
			is_published BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(256) NOT NULL,
			description TEXT NOT NULL,
			slug VARCHAR(64) UNIQUE NOT NULL,
			is_published BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(256) NOT NULL,
			text TEXT NOT NULL,
			pub_date TIMESTAMPTZ NOT NULL,
			is_published BOOLEAN NOT NULL DEFAULT TRUE,
			image VARCHAR(512) NOT NULL DEFAULT '',
			author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			location_id BIGINT REFERENCES locations(id) ON DELETE SET NULL,
			category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			text TEXT NOT NULL,
			post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_pub_date ON posts (pub_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_category ON posts (category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, created_at)`,
	}

	rt := qb.Runtime()
	for _, stmt := range statements {
		if _, err := rt.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
