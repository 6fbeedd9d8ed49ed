package blog

import (
	"context"
	"fmt"

	"github.com/marshallshelly/pebble-orm/pkg/builder"

	"blogicum/internal/models"
)

// Mutations. Each one is a single statement, so a failed permission or
// validation check earlier in the request leaves the store untouched.

func (e *Engine) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	created, err := builder.Insert[models.Post](e.qb).
		Values(post).
		Returning("*").
		ExecReturning(ctx)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("create post: no row returned")
	}
	return &created[0], nil
}

// UpdatePost rewrites the editable fields of a post. Authorship and
// creation time never change.
func (e *Engine) UpdatePost(ctx context.Context, post models.Post) error {
	_, err := builder.Update[models.Post](e.qb).
		Set("title", post.Title).
		Set("text", post.Text).
		Set("pub_date", post.PubDate).
		Set("is_published", post.IsPublished).
		Set("image", post.Image).
		Set("location_id", post.LocationID).
		Set("category_id", post.CategoryID).
		Where(builder.Eq("id", post.ID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (e *Engine) DeletePost(ctx context.Context, id int64) error {
	if _, err := builder.Delete[models.Post](e.qb).
		Where(builder.Eq("id", id)).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (e *Engine) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	created, err := builder.Insert[models.Comment](e.qb).
		Values(comment).
		Returning("*").
		ExecReturning(ctx)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("create comment: no row returned")
	}
	return &created[0], nil
}

func (e *Engine) UpdateComment(ctx context.Context, id int64, text string) error {
	_, err := builder.Update[models.Comment](e.qb).
		Set("text", text).
		Where(builder.Eq("id", id)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (e *Engine) DeleteComment(ctx context.Context, id int64) error {
	if _, err := builder.Delete[models.Comment](e.qb).
		Where(builder.Eq("id", id)).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// PublishedLocations lists the locations offered on the post form.
func (e *Engine) PublishedLocations(ctx context.Context) ([]models.Location, error) {
	locations, err := builder.Select[models.Location](e.qb).
		Where(builder.Eq("is_published", true)).
		OrderByAsc("name").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	return locations, nil
}

// PublishedCategories lists the categories offered on the post form.
func (e *Engine) PublishedCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := builder.Select[models.Category](e.qb).
		Where(builder.Eq("is_published", true)).
		OrderByAsc("title").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	return categories, nil
}
