package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

// ErrPostNotFound is returned when no post has the requested id.
var ErrPostNotFound = errors.New("Post not found.")

type Repository interface {
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]model.Post, error)
	// CreatePost persists p and returns it with its assigned id.
	CreatePost(ctx context.Context, p model.Post) (model.Post, error)
	// GetPost returns ErrPostNotFound when the id is well formed but unknown.
	GetPost(ctx context.Context, id string) (model.Post, error)
	// SavePost replaces a stored post in place. It never creates one.
	SavePost(ctx context.Context, p model.Post) (model.Post, error)
	// ExpiredPosts returns posts created strictly before cutoff.
	ExpiredPosts(ctx context.Context, cutoff time.Time) ([]model.Post, error)
	// DeletePostsBefore removes posts created strictly before cutoff in one
	// operation and reports how many were removed.
	DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close(ctx context.Context) error
}
