// Package model holds the bulletin board aggregate: a Post and the comments
// embedded in it.
package model

import "time"

// Comment is embedded in a Post and has no identity of its own.
type Comment struct {
	Author    *string   `json:"author,omitempty"`
	Text      *string   `json:"text,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is the aggregate root. Text fields are optional and unvalidated; a nil
// pointer means the client did not send the field.
type Post struct {
	ID          string    `json:"id"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Contact     *string   `json:"contact,omitempty"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewPost builds an unsaved post with no comments, stamped with now.
func NewPost(title, description, contact *string, now time.Time) Post {
	return Post{
		Title:       title,
		Description: description,
		Contact:     contact,
		Comments:    []Comment{},
		CreatedAt:   now.UTC(),
	}
}

// AddComment appends a comment stamped with now and returns it.
func (p *Post) AddComment(author, text *string, now time.Time) Comment {
	c := Comment{
		Author:    author,
		Text:      text,
		CreatedAt: now.UTC(),
	}
	p.Comments = append(p.Comments, c)
	return c
}

// ExpiredBy reports whether the post was created strictly before cutoff.
func (p Post) ExpiredBy(cutoff time.Time) bool {
	return p.CreatedAt.Before(cutoff)
}

// Cutoff is the creation time before which posts are considered expired.
func Cutoff(now time.Time, retention time.Duration) time.Time {
	return now.Add(-retention)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
