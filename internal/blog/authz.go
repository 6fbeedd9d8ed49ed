package blog

import "blogicum/internal/models"

// The gate for mutating actions: edits are author-only, deletes allow
// an admin override. It runs once per request, before any write, and a
// denial is a soft redirect to the post's detail page rather than an
// error response.

func CanEditPost(v Viewer, post models.Post) bool {
	return v.Owns(post.AuthorID)
}

func CanDeletePost(v Viewer, post models.Post) bool {
	return v.Owns(post.AuthorID) || v.IsAdmin
}

func CanEditComment(v Viewer, comment models.Comment) bool {
	return v.Owns(comment.AuthorID)
}

func CanDeleteComment(v Viewer, comment models.Comment) bool {
	return v.Owns(comment.AuthorID) || v.IsAdmin
}
