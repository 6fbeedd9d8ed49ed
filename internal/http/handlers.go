package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marshallshelly/pebble-orm/pkg/builder"
	"go.uber.org/zap"

	"blogicum/internal/app"
	"blogicum/internal/auth"
	"blogicum/internal/blog"
	"blogicum/internal/mail"
	"blogicum/internal/models"
	"blogicum/internal/util"
)

// Engine is the query and mutation surface the handlers drive,
// satisfied by blog.Engine.
type Engine interface {
	ListPosts(ctx context.Context, scope blog.Scope, includeUnpublished bool) ([]blog.PostSummary, error)
	PostByID(ctx context.Context, id int64) (*models.Post, error)
	PostDetail(ctx context.Context, id int64, viewer blog.Viewer) (*blog.PostSummary, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	CommentByID(ctx context.Context, postID, commentID int64) (*models.Comment, error)

	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) error
	DeletePost(ctx context.Context, id int64) error
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	UpdateComment(ctx context.Context, id int64, text string) error
	DeleteComment(ctx context.Context, id int64) error
	PublishedLocations(ctx context.Context) ([]models.Location, error)
	PublishedCategories(ctx context.Context) ([]models.Category, error)
}

type Server struct {
	QB     *builder.DB
	Engine Engine
	Cfg    app.Config
	Log    *zap.SugaredLogger
	Notify mail.Notifier
	Mux    *http.ServeMux
}

func NewServer(qb *builder.DB, cfg app.Config, log *zap.SugaredLogger, notify mail.Notifier) *Server {
	s := &Server{
		QB:     qb,
		Engine: blog.NewEngine(qb),
		Cfg:    cfg,
		Log:    log,
		Notify: notify,
		Mux:    http.NewServeMux(),
	}

	s.Mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	s.Mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))

	// feeds and detail
	s.handle("GET /{$}", s.handleIndex)
	s.handle("GET /category/{slug}/{$}", s.handleCategory)
	s.handle("GET /profile/{username}/{$}", s.handleProfile)
	s.handle("GET /posts/{id}/{$}", s.handlePostDetail)

	// post mutations
	s.handleAuthed("GET /posts/create/{$}", s.handlePostForm)
	s.handleAuthed("POST /posts/create/{$}", s.handlePostCreate)
	s.handleAuthed("GET /posts/{id}/edit/{$}", s.handlePostEditForm)
	s.handleAuthed("POST /posts/{id}/edit/{$}", s.handlePostEdit)
	s.handleAuthed("POST /posts/{id}/delete/{$}", s.handlePostDelete)

	// comments
	s.handleAuthed("POST /posts/{id}/comment/{$}", s.handleCommentCreate)
	s.handleAuthed("GET /posts/{id}/comment/{cid}/edit/{$}", s.handleCommentEditForm)
	s.handleAuthed("POST /posts/{id}/comment/{cid}/edit/{$}", s.handleCommentEdit)
	s.handleAuthed("POST /posts/{id}/comment/{cid}/delete/{$}", s.handleCommentDelete)

	// accounts
	s.handle("GET /register", s.handleRegisterForm)
	s.handle("POST /register", s.handleRegister)
	s.handle("GET /login", s.handleLoginForm)
	s.handle("POST /login", s.handleLogin)
	s.handle("POST /logout", s.handleLogout)
	s.handleAuthed("GET /user/edit/{$}", s.handleProfileEditForm)
	s.handleAuthed("POST /user/edit/{$}", s.handleProfileEdit)

	// static pages
	s.handle("GET /pages/about/{$}", s.handlePage("about.html", "About"))
	s.handle("GET /pages/rules/{$}", s.handlePage("rules.html", "Rules"))

	// anything else
	s.Mux.Handle("/", s.withSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w)
	})))

	return s
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	s.Mux.Handle(pattern, s.withAccessLog(s.withSession(h)))
}

func (s *Server) handleAuthed(pattern string, h http.HandlerFunc) {
	s.Mux.Handle(pattern, s.withAccessLog(s.withSession(s.requireAuth(h))))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.Mux.ServeHTTP(w, r) }

// ------------------------------------------------------------------
// feeds
// ------------------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Engine.ListPosts(r.Context(), blog.Scope{}, false)
	if err != nil {
		s.serverError(w, err)
		return
	}
	util.Render(w, "index.html", map[string]any{
		"Title": "Blogicum",
		"User":  sessionUser(r),
		"Page":  blog.Paginate(posts, pageParam(r), s.Cfg.PageSize),
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.Engine.CategoryBySlug(r.Context(), r.PathValue("slug"))
	if errors.Is(err, blog.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	posts, err := s.Engine.ListPosts(r.Context(), blog.Scope{CategoryID: category.ID}, false)
	if err != nil {
		s.serverError(w, err)
		return
	}
	util.Render(w, "category.html", map[string]any{
		"Title":    category.Title,
		"User":     sessionUser(r),
		"Category": category,
		"Page":     blog.Paginate(posts, pageParam(r), s.Cfg.PageSize),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := s.Engine.UserByUsername(r.Context(), r.PathValue("username"))
	if errors.Is(err, blog.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}

	// The owner sees their own scheduled and unpublished posts too.
	viewer := viewerFrom(r)
	posts, err := s.Engine.ListPosts(r.Context(),
		blog.Scope{AuthorID: owner.ID}, viewer.Owns(owner.ID))
	if err != nil {
		s.serverError(w, err)
		return
	}
	util.Render(w, "profile.html", map[string]any{
		"Title":   owner.DisplayName(),
		"User":    sessionUser(r),
		"Profile": owner,
		"IsOwner": viewer.Owns(owner.ID),
		"Page":    blog.Paginate(posts, pageParam(r), s.Cfg.PageSize),
	})
}

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.notFound(w)
		return
	}
	post, err := s.Engine.PostDetail(r.Context(), id, viewerFrom(r))
	if errors.Is(err, blog.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	comments, err := s.Engine.Comments(r.Context(), post.ID)
	if err != nil {
		s.serverError(w, err)
		return
	}
	util.Render(w, "detail.html", map[string]any{
		"Title":    post.Title,
		"User":     sessionUser(r),
		"Post":     post,
		"Comments": comments,
		"Flash":    r.URL.Query().Get("err"),
	})
}

// ------------------------------------------------------------------
// post create / edit / delete
// ------------------------------------------------------------------

type postForm struct {
	Title       string
	Text        string
	PubDate     time.Time
	PubDateRaw  string
	IsPublished bool
	CategoryID  *int64
	LocationID  *int64
	Errors      map[string]string
}

func (f postForm) CategorySelected(id int64) bool {
	return f.CategoryID != nil && *f.CategoryID == id
}

func (f postForm) LocationSelected(id int64) bool {
	return f.LocationID != nil && *f.LocationID == id
}

func (s *Server) parsePostForm(r *http.Request) postForm {
	f := postForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Text:        strings.TrimSpace(r.FormValue("text")),
		PubDateRaw:  strings.TrimSpace(r.FormValue("pub_date")),
		IsPublished: r.FormValue("is_published") != "",
		Errors:      map[string]string{},
	}
	if f.Title == "" {
		f.Errors["title"] = "Title is required"
	}
	if f.Text == "" {
		f.Errors["text"] = "Text is required"
	}
	f.PubDate = time.Now()
	if f.PubDateRaw != "" {
		t, err := parsePubDate(f.PubDateRaw)
		if err != nil {
			f.Errors["pub_date"] = "Unrecognized date"
		} else {
			f.PubDate = t
		}
	}
	if v := r.FormValue("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			f.Errors["category"] = "Unknown category"
		} else {
			f.CategoryID = &id
		}
	}
	if v := r.FormValue("location"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			f.Errors["location"] = "Unknown location"
		} else {
			f.LocationID = &id
		}
	}
	return f
}

// renderPostForm redisplays the create/edit form, possibly with field
// errors. Nothing has been written at this point.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, f postForm, post *models.Post) {
	categories, err := s.Engine.PublishedCategories(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	locations, err := s.Engine.PublishedLocations(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	util.Render(w, "create.html", map[string]any{
		"Title":      title,
		"User":       sessionUser(r),
		"Form":       f,
		"Post":       post,
		"Categories": categories,
		"Locations":  locations,
	})
}

func (s *Server) handlePostForm(w http.ResponseWriter, r *http.Request) {
	s.renderPostForm(w, r, postForm{IsPublished: true, Errors: map[string]string{}}, nil)
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	f := s.parsePostForm(r)

	image, err := s.saveImage(r)
	if err != nil {
		f.Errors["image"] = err.Error()
	}
	if len(f.Errors) > 0 {
		s.renderPostForm(w, r, f, nil)
		return
	}

	post, err := s.Engine.CreatePost(r.Context(), models.Post{
		Title:       f.Title,
		Text:        f.Text,
		PubDate:     f.PubDate,
		IsPublished: f.IsPublished,
		Image:       image,
		AuthorID:    user.ID,
		CategoryID:  f.CategoryID,
		LocationID:  f.LocationID,
	})
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.Log.Infow("post created", "post_id", post.ID, "author", user.Username)
	http.Redirect(w, r, "/profile/"+url.PathEscape(user.Username)+"/", http.StatusSeeOther)
}

func (s *Server) handlePostEditForm(w http.ResponseWriter, r *http.Request) {
	post, viewer, ok := s.postForChange(w, r)
	if !ok {
		return
	}
	if !blog.CanEditPost(viewer, *post) {
		s.denied(w, r, post.ID)
		return
	}
	f := postForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate,
		PubDateRaw:  post.PubDate.Format("2006-01-02T15:04"),
		IsPublished: post.IsPublished,
		CategoryID:  post.CategoryID,
		LocationID:  post.LocationID,
		Errors:      map[string]string{},
	}
	s.renderPostForm(w, r, f, post)
}

func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	post, viewer, ok := s.postForChange(w, r)
	if !ok {
		return
	}
	if !blog.CanEditPost(viewer, *post) {
		s.denied(w, r, post.ID)
		return
	}

	f := s.parsePostForm(r)
	image, err := s.saveImage(r)
	if err != nil {
		f.Errors["image"] = err.Error()
	}
	if len(f.Errors) > 0 {
		s.renderPostForm(w, r, f, post)
		return
	}
	if image == "" {
		image = post.Image
	}

	updated := *post
	updated.Title = f.Title
	updated.Text = f.Text
	updated.PubDate = f.PubDate
	updated.IsPublished = f.IsPublished
	updated.Image = image
	updated.CategoryID = f.CategoryID
	updated.LocationID = f.LocationID
	if err := s.Engine.UpdatePost(r.Context(), updated); err != nil {
		s.serverError(w, err)
		return
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	post, viewer, ok := s.postForChange(w, r)
	if !ok {
		return
	}
	if !blog.CanDeletePost(viewer, *post) {
		s.denied(w, r, post.ID)
		return
	}
	if err := s.Engine.DeletePost(r.Context(), post.ID); err != nil {
		s.serverError(w, err)
		return
	}
	s.Log.Infow("post deleted", "post_id", post.ID, "by", viewer.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// postForChange loads the post a mutating request targets. Posts the
// viewer cannot even read resolve to Not-Found so hidden content is
// not confirmed to exist.
func (s *Server) postForChange(w http.ResponseWriter, r *http.Request) (*models.Post, blog.Viewer, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		s.notFound(w)
		return nil, blog.Viewer{}, false
	}
	post, err := s.Engine.PostByID(r.Context(), id)
	if errors.Is(err, blog.ErrNotFound) {
		s.notFound(w)
		return nil, blog.Viewer{}, false
	}
	if err != nil {
		s.serverError(w, err)
		return nil, blog.Viewer{}, false
	}
	viewer := viewerFrom(r)
	if !post.VisibleAt(time.Now()) && !viewer.Owns(post.AuthorID) && !viewer.IsAdmin {
		s.notFound(w)
		return nil, blog.Viewer{}, false
	}
	return post, viewer, true
}

// ------------------------------------------------------------------
// comments
// ------------------------------------------------------------------

func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.notFound(w)
		return
	}
	user, _ := auth.UserFrom(r.Context())

	// Commenting requires being able to see the post.
	post, err := s.Engine.PostDetail(r.Context(), id, viewerFrom(r))
	if errors.Is(err, blog.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, err)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		http.Redirect(w, r, postURL(post.ID)+"?err="+url.QueryEscape("Comment text is required"), http.StatusSeeOther)
		return
	}
	if _, err := s.Engine.CreateComment(r.Context(), models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: user.ID,
	}); err != nil {
		s.serverError(w, err)
		return
	}

	// Non-fatal: the comment is already committed.
	if post.Author != nil && post.AuthorID != user.ID {
		if err := s.Notify.CommentAdded(post.Author.Email, post.Title); err != nil {
			s.Log.Warnw("comment notification failed", "post_id", post.ID, "error", err)
		}
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (s *Server) commentForChange(w http.ResponseWriter, r *http.Request) (*models.Comment, blog.Viewer, bool) {
	postID, ok := idParam(r, "id")
	if !ok {
		s.notFound(w)
		return nil, blog.Viewer{}, false
	}
	commentID, ok := idParam(r, "cid")
	if !ok {
		s.notFound(w)
		return nil, blog.Viewer{}, false
	}
	comment, err := s.Engine.CommentByID(r.Context(), postID, commentID)
	if errors.Is(err, blog.ErrNotFound) {
		s.notFound(w)
		return nil, blog.Viewer{}, false
	}
	if err != nil {
		s.serverError(w, err)
		return nil, blog.Viewer{}, false
	}
	return comment, viewerFrom(r), true
}

func (s *Server) handleCommentEditForm(w http.ResponseWriter, r *http.Request) {
	comment, viewer, ok := s.commentForChange(w, r)
	if !ok {
		return
	}
	if !blog.CanEditComment(viewer, *comment) {
		s.denied(w, r, comment.PostID)
		return
	}
	util.Render(w, "comment.html", map[string]any{
		"Title":   "Edit comment",
		"User":    sessionUser(r),
		"Comment": comment,
	})
}

func (s *Server) handleCommentEdit(w http.ResponseWriter, r *http.Request) {
	comment, viewer, ok := s.commentForChange(w, r)
	if !ok {
		return
	}
	if !blog.CanEditComment(viewer, *comment) {
		s.denied(w, r, comment.PostID)
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		http.Redirect(w, r, postURL(comment.PostID)+"?err="+url.QueryEscape("Comment text is required"), http.StatusSeeOther)
		return
	}
	if err := s.Engine.UpdateComment(r.Context(), comment.ID, text); err != nil {
		s.serverError(w, err)
		return
	}
	http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	comment, viewer, ok := s.commentForChange(w, r)
	if !ok {
		return
	}
	if !blog.CanDeleteComment(viewer, *comment) {
		s.denied(w, r, comment.PostID)
		return
	}
	if err := s.Engine.DeleteComment(r.Context(), comment.ID); err != nil {
		s.serverError(w, err)
		return
	}
	http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)
}

// ------------------------------------------------------------------
// accounts
// ------------------------------------------------------------------

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	util.Render(w, "registration.html", map[string]any{
		"Title":    "Sign up",
		"Error":    r.URL.Query().Get("err"),
		"Email":    r.URL.Query().Get("email"),
		"Username": r.URL.Query().Get("username"),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	_, err := auth.Register(r.Context(), s.QB, email, username, password)
	if err != nil {
		msg := "Could not create the account"
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			msg = "Email already taken"
		case errors.Is(err, auth.ErrUsernameTaken):
			msg = "Username already taken"
		default:
			s.Log.Warnw("registration failed", "error", err)
		}
		http.Redirect(w, r, "/register?err="+url.QueryEscape(msg)+
			"&email="+url.QueryEscape(email)+
			"&username="+url.QueryEscape(username), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login?ok=1", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	util.Render(w, "login.html", map[string]any{
		"Title":    "Log in",
		"OK":       r.URL.Query().Get("ok") == "1",
		"Error":    r.URL.Query().Get("err"),
		"Username": r.URL.Query().Get("username"),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	sid, user, err := auth.Login(r.Context(), s.QB, username, password, s.Cfg.SessionLifetime)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidLogin) {
			s.Log.Warnw("login failed", "username", username, "error", err)
		}
		http.Redirect(w, r, "/login?err="+url.QueryEscape("Invalid username or password")+
			"&username="+url.QueryEscape(username), http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.Cfg.SessionLifetime),
	})
	http.Redirect(w, r, "/profile/"+url.PathEscape(user.Username)+"/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if err := auth.Logout(r.Context(), s.QB, c.Value); err != nil {
			s.Log.Warnw("logout failed", "error", err)
		}
		http.SetCookie(w, &http.Cookie{Name: CookieName, Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleProfileEditForm(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	util.Render(w, "user.html", map[string]any{
		"Title": "Edit profile",
		"User":  user,
		"Error": r.URL.Query().Get("err"),
	})
}

func (s *Server) handleProfileEdit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	err := auth.UpdateProfile(r.Context(), s.QB, user.ID,
		strings.TrimSpace(r.FormValue("first_name")),
		strings.TrimSpace(r.FormValue("last_name")),
		strings.TrimSpace(r.FormValue("email")))
	if err != nil {
		msg := "Could not update the profile"
		if errors.Is(err, auth.ErrEmailTaken) {
			msg = "Email already taken"
		} else {
			s.Log.Warnw("profile update failed", "user_id", user.ID, "error", err)
		}
		http.Redirect(w, r, "/user/edit/?err="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/profile/"+url.PathEscape(user.Username)+"/", http.StatusSeeOther)
}

// ------------------------------------------------------------------
// static pages and helpers
// ------------------------------------------------------------------

func (s *Server) handlePage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		util.Render(w, name, map[string]any{"Title": title, "User": sessionUser(r)})
	}
}

func (s *Server) notFound(w http.ResponseWriter) {
	util.RenderError(w, http.StatusNotFound, "Page not found")
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.Log.Errorw("internal error", "error", err)
	util.RenderError(w, http.StatusInternalServerError, "Something went wrong")
}

// denied sends the viewer back to the post's detail view instead of
// surfacing a 403.
func (s *Server) denied(w http.ResponseWriter, r *http.Request, postID int64) {
	http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
}

func postURL(id int64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func sessionUser(r *http.Request) *models.User {
	user, _ := auth.UserFrom(r.Context())
	return user
}

func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func parsePubDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// saveImage stores an uploaded post image under the media directory
// and returns its public path. No upload at all is fine.
func (s *Server) saveImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if header.Size > 10<<20 {
		return "", errors.New("image too large (max 10 MB)")
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", errors.New("unsupported image format")
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if !strings.HasPrefix(http.DetectContentType(buf[:n]), "image/") {
		return "", errors.New("file is not an image")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	dir := filepath.Join(s.Cfg.MediaDir, "posts_images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/media/posts_images/" + name, nil
}
