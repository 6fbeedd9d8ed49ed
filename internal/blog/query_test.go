package blog

import (
	"os"
	"testing"
	"time"

	"github.com/marshallshelly/pebble-orm/pkg/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogicum/internal/db"
	"blogicum/internal/models"
)

func TestMain(m *testing.M) {
	if err := db.RegisterModels(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testEngine() *Engine {
	fixed := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	return &Engine{qb: builder.New(nil), now: func() time.Time { return fixed }}
}

func TestListQueryToSQL(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name               string
		scope              Scope
		includeUnpublished bool
		wantSQL            string
		wantArgs           int
	}{
		{
			name:  "global feed",
			scope: Scope{},
			wantSQL: "SELECT * FROM posts WHERE is_published = $1 AND pub_date <= $2 AND " +
				"(category_id IS NULL OR EXISTS ((SELECT 1 FROM categories" +
				" WHERE categories.id = posts.category_id AND categories.is_published)))" +
				" ORDER BY pub_date DESC",
			wantArgs: 2,
		},
		{
			name:  "category feed",
			scope: Scope{CategoryID: 7},
			wantSQL: "SELECT * FROM posts WHERE category_id = $1 AND is_published = $2 AND pub_date <= $3 AND " +
				"(category_id IS NULL OR EXISTS ((SELECT 1 FROM categories" +
				" WHERE categories.id = posts.category_id AND categories.is_published)))" +
				" ORDER BY pub_date DESC",
			wantArgs: 3,
		},
		{
			name:  "public profile feed",
			scope: Scope{AuthorID: 3},
			wantSQL: "SELECT * FROM posts WHERE author_id = $1 AND is_published = $2 AND pub_date <= $3 AND " +
				"(category_id IS NULL OR EXISTS ((SELECT 1 FROM categories" +
				" WHERE categories.id = posts.category_id AND categories.is_published)))" +
				" ORDER BY pub_date DESC",
			wantArgs: 3,
		},
		{
			name:               "own profile feed skips the visibility predicate",
			scope:              Scope{AuthorID: 3},
			includeUnpublished: true,
			wantSQL:            "SELECT * FROM posts WHERE author_id = $1 ORDER BY pub_date DESC",
			wantArgs:           1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := e.listQuery(tt.scope, tt.includeUnpublished).ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestListQueryPubDateArgument(t *testing.T) {
	e := testEngine()

	_, args, err := e.listQuery(Scope{}, false).ToSQL()
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, true, args[0])
	assert.Equal(t, e.now(), args[1], "future-dated posts must be cut off at the request time")
}

func TestReadableBy(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	hidden := models.Post{ID: 10, AuthorID: 1, IsPublished: false, PubDate: now.Add(-time.Hour)}
	scheduled := models.Post{ID: 11, AuthorID: 1, IsPublished: true, PubDate: now.Add(time.Hour)}
	visible := models.Post{ID: 12, AuthorID: 1, IsPublished: true, PubDate: now.Add(-time.Hour)}

	owner := Viewer{ID: 1}
	other := Viewer{ID: 2}
	admin := Viewer{ID: 3, IsAdmin: true}
	anon := Viewer{}

	assert.True(t, readableBy(hidden, owner, now))
	assert.False(t, readableBy(hidden, other, now))
	assert.False(t, readableBy(hidden, admin, now), "the detail view has no admin override")
	assert.False(t, readableBy(hidden, anon, now))

	assert.True(t, readableBy(scheduled, owner, now))
	assert.False(t, readableBy(scheduled, other, now))

	assert.True(t, readableBy(visible, anon, now))
	assert.True(t, readableBy(visible, other, now))
}

func TestCategoryBySlugToSQL(t *testing.T) {
	e := testEngine()

	sql, args, err := builder.Select[models.Category](e.qb).
		Where(builder.Eq("slug", "travel")).
		And(builder.Eq("is_published", true)).
		Limit(1).
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM categories WHERE slug = $1 AND is_published = $2 LIMIT 1", sql)
	assert.Equal(t, []interface{}{"travel", true}, args)
}

func TestCommentsToSQL(t *testing.T) {
	e := testEngine()

	sql, args, err := builder.Select[models.Comment](e.qb).
		Where(builder.Eq("post_id", int64(42))).
		OrderByAsc("created_at").
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM comments WHERE post_id = $1 ORDER BY created_at ASC", sql)
	assert.Equal(t, []interface{}{int64(42)}, args)
}
