// Package memory keeps posts in process memory. It backs the test suites and
// STORE_DRIVER=memory; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
)

type memoryRepository struct {
	mu    sync.RWMutex
	posts map[string]model.Post
}

func New() *memoryRepository {
	return &memoryRepository{
		posts: make(map[string]model.Post),
	}
}

func (mr *memoryRepository) ListPosts(ctx context.Context) ([]model.Post, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	posts := make([]model.Post, 0, len(mr.posts))
	for _, p := range mr.posts {
		posts = append(posts, clonePost(p))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (mr *memoryRepository) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	} else if _, exists := mr.posts[p.ID]; exists {
		return model.Post{}, fmt.Errorf("post %s already exists", p.ID)
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	mr.posts[p.ID] = clonePost(p)
	return clonePost(p), nil
}

func (mr *memoryRepository) GetPost(ctx context.Context, id string) (model.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Post{}, fmt.Errorf("invalid post id %q: %w", id, err)
	}

	mr.mu.RLock()
	defer mr.mu.RUnlock()

	p, ok := mr.posts[id]
	if !ok {
		return model.Post{}, repository.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (mr *memoryRepository) SavePost(ctx context.Context, p model.Post) (model.Post, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if _, ok := mr.posts[p.ID]; !ok {
		return model.Post{}, repository.ErrPostNotFound
	}
	mr.posts[p.ID] = clonePost(p)
	return clonePost(p), nil
}

func (mr *memoryRepository) ExpiredPosts(ctx context.Context, cutoff time.Time) ([]model.Post, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	posts := []model.Post{}
	for _, p := range mr.posts {
		if p.ExpiredBy(cutoff) {
			posts = append(posts, clonePost(p))
		}
	}
	return posts, nil
}

func (mr *memoryRepository) DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	var deleted int64
	for id, p := range mr.posts {
		if p.ExpiredBy(cutoff) {
			delete(mr.posts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (mr *memoryRepository) Close(ctx context.Context) error {
	return nil
}

// clonePost copies the comment slice so callers cannot mutate stored state.
func clonePost(p model.Post) model.Post {
	comments := make([]model.Comment, len(p.Comments))
	copy(comments, p.Comments)
	p.Comments = comments
	return p
}
