package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogicum/internal/app"
	"blogicum/internal/auth"
	"blogicum/internal/blog"
	"blogicum/internal/mail"
	"blogicum/internal/models"
)

// fakeEngine serves canned rows so the request wiring can be exercised
// without a database.
type fakeEngine struct {
	post            *models.Post
	comment         *models.Comment
	deletedPosts    []int64
	deletedComments []int64
}

func (f *fakeEngine) ListPosts(context.Context, blog.Scope, bool) ([]blog.PostSummary, error) {
	return nil, nil
}

func (f *fakeEngine) PostByID(_ context.Context, id int64) (*models.Post, error) {
	if f.post == nil || f.post.ID != id {
		return nil, blog.ErrNotFound
	}
	return f.post, nil
}

func (f *fakeEngine) PostDetail(ctx context.Context, id int64, viewer blog.Viewer) (*blog.PostSummary, error) {
	post, err := f.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.VisibleAt(time.Now()) && !viewer.Owns(post.AuthorID) {
		return nil, blog.ErrNotFound
	}
	return &blog.PostSummary{Post: *post}, nil
}

func (f *fakeEngine) CategoryBySlug(context.Context, string) (*models.Category, error) {
	return nil, blog.ErrNotFound
}

func (f *fakeEngine) UserByUsername(context.Context, string) (*models.User, error) {
	return nil, blog.ErrNotFound
}

func (f *fakeEngine) Comments(context.Context, int64) ([]models.Comment, error) {
	return nil, nil
}

func (f *fakeEngine) CommentByID(_ context.Context, postID, commentID int64) (*models.Comment, error) {
	if f.comment == nil || f.comment.ID != commentID || f.comment.PostID != postID {
		return nil, blog.ErrNotFound
	}
	return f.comment, nil
}

func (f *fakeEngine) CreatePost(_ context.Context, post models.Post) (*models.Post, error) {
	return &post, nil
}

func (f *fakeEngine) UpdatePost(context.Context, models.Post) error { return nil }

func (f *fakeEngine) DeletePost(_ context.Context, id int64) error {
	f.deletedPosts = append(f.deletedPosts, id)
	return nil
}

func (f *fakeEngine) CreateComment(_ context.Context, comment models.Comment) (*models.Comment, error) {
	return &comment, nil
}

func (f *fakeEngine) UpdateComment(context.Context, int64, string) error { return nil }

func (f *fakeEngine) DeleteComment(_ context.Context, id int64) error {
	f.deletedComments = append(f.deletedComments, id)
	return nil
}

func (f *fakeEngine) PublishedLocations(context.Context) ([]models.Location, error) {
	return nil, nil
}

func (f *fakeEngine) PublishedCategories(context.Context) ([]models.Category, error) {
	return nil, nil
}

func testServer(engine Engine) *Server {
	return &Server{
		Engine: engine,
		Cfg:    app.Config{PageSize: 10},
		Log:    zap.NewNop().Sugar(),
		Notify: mail.Discard{},
	}
}

func mutationRequest(method, target, id string, user *models.User) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	r.SetPathValue("id", id)
	if user != nil {
		r = r.WithContext(auth.WithUser(r.Context(), user))
	}
	return r
}

func TestPostDeleteDeniedRedirectsToDetail(t *testing.T) {
	engine := &fakeEngine{post: &models.Post{
		ID: 10, AuthorID: 1, IsPublished: true, PubDate: time.Now().Add(-time.Hour),
	}}
	s := testServer(engine)

	w := httptest.NewRecorder()
	s.handlePostDelete(w, mutationRequest("POST", "/posts/10/delete/", "10", &models.User{ID: 2}))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts/10/", w.Header().Get("Location"))
	assert.Empty(t, engine.deletedPosts, "a denied delete must leave the store untouched")
}

func TestPostEditDeniedRedirectsToDetail(t *testing.T) {
	engine := &fakeEngine{post: &models.Post{
		ID: 10, AuthorID: 1, IsPublished: true, PubDate: time.Now().Add(-time.Hour),
	}}
	s := testServer(engine)

	w := httptest.NewRecorder()
	s.handlePostEdit(w, mutationRequest("POST", "/posts/10/edit/", "10", &models.User{ID: 2}))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts/10/", w.Header().Get("Location"))
}

func TestHiddenPostMutationIsNotFoundForOthers(t *testing.T) {
	engine := &fakeEngine{post: &models.Post{
		ID: 10, AuthorID: 1, IsPublished: false, PubDate: time.Now().Add(-time.Hour),
	}}
	s := testServer(engine)

	w := httptest.NewRecorder()
	s.handlePostDelete(w, mutationRequest("POST", "/posts/10/delete/", "10", &models.User{ID: 2}))

	assert.Equal(t, http.StatusNotFound, w.Code,
		"hidden posts must not be confirmed to exist")
	assert.Empty(t, engine.deletedPosts)
}

func TestHiddenPostMutationReachableByOwnerAndAdmin(t *testing.T) {
	hidden := &models.Post{ID: 10, AuthorID: 1, IsPublished: false, PubDate: time.Now().Add(-time.Hour)}

	t.Run("owner", func(t *testing.T) {
		engine := &fakeEngine{post: hidden}
		s := testServer(engine)
		w := httptest.NewRecorder()
		s.handlePostDelete(w, mutationRequest("POST", "/posts/10/delete/", "10", &models.User{ID: 1}))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, []int64{10}, engine.deletedPosts)
	})

	t.Run("admin", func(t *testing.T) {
		engine := &fakeEngine{post: hidden}
		s := testServer(engine)
		w := httptest.NewRecorder()
		s.handlePostDelete(w, mutationRequest("POST", "/posts/10/delete/", "10", &models.User{ID: 3, IsAdmin: true}))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, []int64{10}, engine.deletedPosts)
	})
}

func TestHiddenPostDetailIsNotFoundForOthers(t *testing.T) {
	engine := &fakeEngine{post: &models.Post{
		ID: 10, AuthorID: 1, IsPublished: false, PubDate: time.Now().Add(-time.Hour),
	}}
	s := testServer(engine)

	w := httptest.NewRecorder()
	s.handlePostDetail(w, mutationRequest("GET", "/posts/10/", "10", &models.User{ID: 2}))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentDeleteDeniedRedirectsToDetail(t *testing.T) {
	engine := &fakeEngine{comment: &models.Comment{ID: 20, PostID: 10, AuthorID: 1}}
	s := testServer(engine)

	r := mutationRequest("POST", "/posts/10/comment/20/delete/", "10", &models.User{ID: 2})
	r.SetPathValue("cid", "20")
	w := httptest.NewRecorder()
	s.handleCommentDelete(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts/10/", w.Header().Get("Location"))
	assert.Empty(t, engine.deletedComments)
}

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-03-01T15:04", time.Date(2025, 3, 1, 15, 4, 0, 0, time.Local), true},
		{"2025-03-01 15:04", time.Date(2025, 3, 1, 15, 4, 0, 0, time.Local), true},
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), true},
		{"March 1st", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, err := parsePubDate(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "%s: got %v", tt.in, got)
	}
}

func TestPageParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"page=3", 3},
		{"page=0", 1},
		{"page=-2", 1},
		{"page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/?"+tt.query, nil)
		assert.Equal(t, tt.want, pageParam(r), tt.query)
	}
}

func TestIDParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/posts/42/", nil)
	r.SetPathValue("id", "42")
	id, ok := idParam(r, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	r.SetPathValue("id", "banana")
	_, ok = idParam(r, "id")
	assert.False(t, ok)

	r.SetPathValue("id", "-1")
	_, ok = idParam(r, "id")
	assert.False(t, ok)
}

func TestPostFormSelection(t *testing.T) {
	five := int64(5)
	f := postForm{CategoryID: &five}
	assert.True(t, f.CategorySelected(5))
	assert.False(t, f.CategorySelected(6))
	assert.False(t, f.LocationSelected(5))
}
