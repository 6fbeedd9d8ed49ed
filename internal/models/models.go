package models

import "time"

// table_name: users
type User struct {
	ID           int64     `po:"id,primaryKey,bigserial,autoIncrement"`
	Username     string    `po:"username,varchar(150),unique,notNull"`
	Email        string    `po:"email,varchar(320),unique,notNull"`
	FirstName    string    `po:"first_name,varchar(150)"`
	LastName     string    `po:"last_name,varchar(150)"`
	PasswordHash string    `po:"password_hash,varchar(255),notNull"`
	IsAdmin      bool      `po:"is_admin,boolean,notNull"`
	CreatedAt    time.Time `po:"created_at,timestamptz,default(NOW()),notNull"`
}

// DisplayName is the name shown next to posts and comments.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// table_name: sessions
type Session struct {
	ID        string    `po:"id,primaryKey,uuid"`
	UserID    int64     `po:"user_id,bigint,notNull"`
	ExpiresAt time.Time `po:"expires_at,timestamptz,notNull"`
	CreatedAt time.Time `po:"created_at,timestamptz,default(NOW()),notNull"`
}

// table_name: locations
type Location struct {
	ID          int64     `po:"id,primaryKey,bigserial,autoIncrement"`
	Name        string    `po:"name,varchar(256),notNull"`
	IsPublished bool      `po:"is_published,boolean,notNull"`
	CreatedAt   time.Time `po:"created_at,timestamptz,default(NOW()),notNull"`
}

// table_name: categories
type Category struct {
	ID          int64     `po:"id,primaryKey,bigserial,autoIncrement"`
	Title       string    `po:"title,varchar(256),notNull"`
	Description string    `po:"description,text,notNull"`
	Slug        string    `po:"slug,varchar(64),unique,notNull"`
	IsPublished bool      `po:"is_published,boolean,notNull"`
	CreatedAt   time.Time `po:"created_at,timestamptz,default(NOW()),notNull"`
}

// table_name: posts
type Post struct {
	ID          int64     `po:"id,primaryKey,bigserial,autoIncrement"`
	Title       string    `po:"title,varchar(256),notNull"`
	Text        string    `po:"text,text,notNull"`
	PubDate     time.Time `po:"pub_date,timestamptz,notNull"`
	IsPublished bool      `po:"is_published,boolean,notNull"`
	Image       string    `po:"image,varchar(512)"`
	AuthorID    int64     `po:"author_id,bigint,notNull"`
	LocationID  *int64    `po:"location_id,bigint"`
	CategoryID  *int64    `po:"category_id,bigint"`
	CreatedAt   time.Time `po:"created_at,timestamptz,default(NOW()),notNull"`

	Author   *User     `po:"-,belongsTo,foreignKey(author_id),references(id)"`
	Location *Location `po:"-,belongsTo,foreignKey(location_id),references(id)"`
	Category *Category `po:"-,belongsTo,foreignKey(category_id),references(id)"`
}

// VisibleAt reports whether the post may be shown to viewers other than
// its author: flagged published, publication time reached, and the
// category (when set) published as well. Category must be loaded before
// calling when CategoryID is non-nil.
func (p Post) VisibleAt(now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	if p.CategoryID == nil {
		return true
	}
	return p.Category != nil && p.Category.IsPublished
}

// table_name: comments
type Comment struct {
	ID        int64     `po:"id,primaryKey,bigserial,autoIncrement"`
	Text      string    `po:"text,text,notNull"`
	PostID    int64     `po:"post_id,bigint,notNull"`
	AuthorID  int64     `po:"author_id,bigint,notNull"`
	CreatedAt time.Time `po:"created_at,timestamptz,default(NOW()),notNull"`

	Author *User `po:"-,belongsTo,foreignKey(author_id),references(id)"`
	Post   *Post `po:"-,belongsTo,foreignKey(post_id),references(id)"`
}
