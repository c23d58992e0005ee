package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
)

// PostInput carries the optional fields a client may send for a new post.
type PostInput struct {
	Title       *string
	Description *string
	Contact     *string
}

// CommentInput carries the optional fields of a new comment.
type CommentInput struct {
	Author *string
	Text   *string
}

type Service struct {
	repo    repository.Repository
	log     *logrus.Logger
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		svc.now = now
	}
}

// WithTimeout bounds every store call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(svc *Service) {
		svc.timeout = d
	}
}

func New(repo repository.Repository, log *logrus.Logger, opts ...Option) *Service {
	svc := &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) ListPosts(ctx context.Context) ([]model.Post, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	return svc.repo.ListPosts(ctx)
}

func (svc *Service) CreatePost(ctx context.Context, in PostInput) (model.Post, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	post := model.NewPost(in.Title, in.Description, in.Contact, svc.now())
	created, err := svc.repo.CreatePost(ctx, post)
	if err != nil {
		return model.Post{}, err
	}
	svc.log.WithField("post_id", created.ID).Debug("post created")
	return created, nil
}

// AddComment appends a comment to the post with the given id. It returns
// repository.ErrPostNotFound when the post does not exist, including when it
// disappears between the lookup and the save.
func (svc *Service) AddComment(ctx context.Context, postID string, in CommentInput) (model.Post, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	post, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return model.Post{}, err
	}

	post.AddComment(in.Author, in.Text, svc.now())

	updated, err := svc.repo.SavePost(ctx, post)
	if err != nil {
		return model.Post{}, err
	}
	svc.log.WithFields(logrus.Fields{
		"post_id":  postID,
		"comments": len(updated.Comments),
	}).Debug("comment added")
	return updated, nil
}

func (svc *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if svc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, svc.timeout)
}
