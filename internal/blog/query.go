// Package blog holds the post-visibility rules and the queries every
// listing and detail page is built from.
package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marshallshelly/pebble-orm/pkg/builder"

	"blogicum/internal/models"
)

// ErrNotFound covers unknown ids and slugs as well as hidden resources
// requested by someone other than their author. Callers surface it as a
// 404 so hidden content is indistinguishable from absent content.
var ErrNotFound = errors.New("blog: not found")

// Viewer is the identity a request acts as. The zero value is anonymous.
type Viewer struct {
	ID      int64
	IsAdmin bool
}

func (v Viewer) Anonymous() bool { return v.ID == 0 }

// Owns reports whether the viewer authored the resource.
func (v Viewer) Owns(authorID int64) bool { return !v.Anonymous() && v.ID == authorID }

// Scope restricts a post listing to one category or one author.
// The zero value is the global feed.
type Scope struct {
	CategoryID int64
	AuthorID   int64
}

// PostSummary is a post row joined with its author, location and
// category, annotated with the number of comments.
type PostSummary struct {
	models.Post
	CommentCount int64
}

// Engine builds the filtered, ordered, annotated result sets the views
// render. Reads have no side effects and are safe to re-run.
type Engine struct {
	qb  *builder.DB
	now func() time.Time
}

func NewEngine(qb *builder.DB) *Engine {
	return &Engine{qb: qb, now: time.Now}
}

// categoryPublished keeps a post with a category out of public feeds
// whenever the category itself is unpublished.
const categoryPublished = `SELECT 1 FROM categories` +
	` WHERE categories.id = posts.category_id AND categories.is_published`

// visibleConditions is the visibility predicate:
// published, publication time reached, category absent or published.
func visibleConditions(now time.Time) []builder.Condition {
	return []builder.Condition{
		builder.Eq("is_published", true),
		builder.Lte("pub_date", now),
		builder.Group(
			builder.IsNull("category_id"),
			builder.Or(builder.ExistsSubquery(builder.NewSubquery(categoryPublished))),
		),
	}
}

// listQuery composes the select for a scope. includeUnpublished is true
// only on the author's own profile feed and the owner/admin mutation
// paths; everyone else gets the visibility predicate.
func (e *Engine) listQuery(scope Scope, includeUnpublished bool) *builder.SelectQuery[models.Post] {
	q := builder.Select[models.Post](e.qb)
	if scope.CategoryID != 0 {
		q = q.Where(builder.Eq("category_id", scope.CategoryID))
	}
	if scope.AuthorID != 0 {
		q = q.Where(builder.Eq("author_id", scope.AuthorID))
	}
	if !includeUnpublished {
		for _, cond := range visibleConditions(e.now()) {
			q = q.Where(cond)
		}
	}
	return q.OrderByDesc("pub_date")
}

// ListPosts returns the posts a view should render, newest first, with
// authors, locations, categories and comment counts attached.
func (e *Engine) ListPosts(ctx context.Context, scope Scope, includeUnpublished bool) ([]PostSummary, error) {
	posts, err := e.listQuery(scope, includeUnpublished).
		Preload("Author", "Location", "Category").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return e.annotate(ctx, posts)
}

// PostByID fetches one post with its relations, ignoring visibility.
// The mutation handlers use it together with the authorization gate;
// readers go through PostDetail instead.
func (e *Engine) PostByID(ctx context.Context, id int64) (*models.Post, error) {
	posts, err := builder.Select[models.Post](e.qb).
		Where(builder.Eq("id", id)).
		Preload("Author", "Location", "Category").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("post by id: %w", err)
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

// readableBy reports whether the viewer may read the post: either the
// visibility predicate holds or the viewer authored it.
func readableBy(post models.Post, viewer Viewer, now time.Time) bool {
	return post.VisibleAt(now) || viewer.Owns(post.AuthorID)
}

// PostDetail returns one post. Posts failing the visibility predicate
// are returned only to their author; everyone else gets ErrNotFound.
func (e *Engine) PostDetail(ctx context.Context, id int64, viewer Viewer) (*PostSummary, error) {
	post, err := e.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !readableBy(*post, viewer, e.now()) {
		return nil, ErrNotFound
	}
	annotated, err := e.annotate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &annotated[0], nil
}

// CategoryBySlug resolves a category feed. Unknown and unpublished
// slugs are ErrNotFound, never an empty listing.
func (e *Engine) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	cats, err := builder.Select[models.Category](e.qb).
		Where(builder.Eq("slug", slug)).
		And(builder.Eq("is_published", true)).
		Limit(1).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("category by slug: %w", err)
	}
	if len(cats) == 0 {
		return nil, ErrNotFound
	}
	return &cats[0], nil
}

// UserByUsername resolves a profile page owner.
func (e *Engine) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := builder.Select[models.User](e.qb).
		Where(builder.Eq("username", username)).
		Limit(1).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("user by username: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

// Comments returns a post's comments oldest first. Post feeds are
// newest-first; conversations read top to bottom.
func (e *Engine) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	comments, err := builder.Select[models.Comment](e.qb).
		Where(builder.Eq("post_id", postID)).
		OrderByAsc("created_at").
		Preload("Author").
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("comments: %w", err)
	}
	return comments, nil
}

// CommentByID fetches one comment, scoped to its post so a comment id
// from another thread does not resolve.
func (e *Engine) CommentByID(ctx context.Context, postID, commentID int64) (*models.Comment, error) {
	comments, err := builder.Select[models.Comment](e.qb).
		Where(builder.Eq("id", commentID)).
		And(builder.Eq("post_id", postID)).
		Limit(1).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("comment by id: %w", err)
	}
	if len(comments) == 0 {
		return nil, ErrNotFound
	}
	return &comments[0], nil
}

// annotate attaches comment counts with one grouped query over the
// listing's ids. It runs before pagination, which slices the already
// annotated sequence.
func (e *Engine) annotate(ctx context.Context, posts []models.Post) ([]PostSummary, error) {
	summaries := make([]PostSummary, len(posts))
	ids := make([]int64, len(posts))
	for i, p := range posts {
		summaries[i] = PostSummary{Post: p}
		ids[i] = p.ID
	}
	if len(ids) == 0 {
		return summaries, nil
	}

	rows, err := e.qb.Runtime().Query(ctx,
		`SELECT post_id, COUNT(*) FROM comments WHERE post_id = ANY($1) GROUP BY post_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("comment counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64, len(ids))
	for rows.Next() {
		var postID, n int64
		if err := rows.Scan(&postID, &n); err != nil {
			return nil, fmt.Errorf("comment counts: %w", err)
		}
		counts[postID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comment counts: %w", err)
	}

	for i := range summaries {
		summaries[i].CommentCount = counts[summaries[i].ID]
	}
	return summaries, nil
}
