package db

import (
	"context"
	"fmt"

	"github.com/marshallshelly/pebble-orm/pkg/builder"
	"github.com/marshallshelly/pebble-orm/pkg/registry"
	"github.com/marshallshelly/pebble-orm/pkg/runtime"
	"github.com/marshallshelly/pebble-orm/pkg/schema"

	"blogicum/internal/models"
)

// tableNames maps struct names to their tables. Registered before the
// models so the registry does not fall back to derived names.
var tableNames = map[string]string{
	"User":     "users",
	"Session":  "sessions",
	"Location": "locations",
	"Category": "categories",
	"Post":     "posts",
	"Comment":  "comments",
}

// RegisterModels registers every entity with the ORM registry.
func RegisterModels() error {
	for structName, table := range tableNames {
		schema.RegisterTableName(structName, table)
	}
	for _, model := range []any{
		models.User{},
		models.Session{},
		models.Location{},
		models.Category{},
		models.Post{},
		models.Comment{},
	} {
		if err := registry.Register(model); err != nil {
			return fmt.Errorf("register model: %w", err)
		}
	}
	return nil
}

// Open connects to PostgreSQL and returns a query-builder handle.
func Open(ctx context.Context, url string) (*builder.DB, error) {
	if err := RegisterModels(); err != nil {
		return nil, err
	}
	rt, err := runtime.ConnectWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return builder.New(rt), nil
}
