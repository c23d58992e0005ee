package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
)

var base = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func mustCreate(t *testing.T, r *memoryRepository, title string, createdAt time.Time) model.Post {
	t.Helper()
	p, err := r.CreatePost(context.Background(), model.NewPost(model.StringPtr(title), nil, nil, createdAt))
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return p
}

func TestCreateAssignsID(t *testing.T) {
	r := New()
	p := mustCreate(t, r, "hello", base)
	if _, err := uuid.Parse(p.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", p.ID)
	}
}

func TestListNewestFirst(t *testing.T) {
	r := New()
	p1 := mustCreate(t, r, "p1", base)
	p2 := mustCreate(t, r, "p2", base.Add(time.Second))
	p3 := mustCreate(t, r, "p3", base.Add(2*time.Second))

	posts, err := r.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	want := []string{p3.ID, p2.ID, p1.ID}
	if len(posts) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(posts))
	}
	for i, id := range want {
		if posts[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, posts[i].ID)
		}
	}
}

func TestGetPost(t *testing.T) {
	r := New()
	p := mustCreate(t, r, "p", base)

	got, err := r.GetPost(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if *got.Title != "p" {
		t.Errorf("expected title 'p', got %q", *got.Title)
	}

	_, err = r.GetPost(context.Background(), uuid.New().String())
	if !errors.Is(err, repository.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}

	_, err = r.GetPost(context.Background(), "not-an-id")
	if err == nil || errors.Is(err, repository.ErrPostNotFound) {
		t.Errorf("expected malformed id error, got %v", err)
	}
}

func TestSaveDoesNotAliasCallerState(t *testing.T) {
	r := New()
	p := mustCreate(t, r, "p", base)

	p.AddComment(model.StringPtr("x"), model.StringPtr("y"), base)
	if _, err := r.SavePost(context.Background(), p); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	p.Comments[0].Text = model.StringPtr("mutated")

	got, _ := r.GetPost(context.Background(), p.ID)
	if *got.Comments[0].Text != "y" {
		t.Errorf("stored comment changed through caller slice: %q", *got.Comments[0].Text)
	}
}

func TestSaveMissingPost(t *testing.T) {
	r := New()
	p := model.NewPost(nil, nil, nil, base)
	p.ID = uuid.New().String()

	if _, err := r.SavePost(context.Background(), p); !errors.Is(err, repository.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	posts, _ := r.ListPosts(context.Background())
	if len(posts) != 0 {
		t.Errorf("save must not create posts, found %d", len(posts))
	}
}

func TestDeletePostsBeforeIsStrict(t *testing.T) {
	r := New()
	cutoff := base
	old := mustCreate(t, r, "old", cutoff.Add(-time.Nanosecond))
	edge := mustCreate(t, r, "edge", cutoff)

	expired, err := r.ExpiredPosts(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ExpiredPosts: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != old.ID {
		t.Fatalf("expected only %s expired, got %v", old.ID, expired)
	}

	n, err := r.DeletePostsBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeletePostsBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deletion, got %d", n)
	}
	if _, err := r.GetPost(context.Background(), edge.ID); err != nil {
		t.Errorf("post at cutoff should survive: %v", err)
	}

	n, _ = r.DeletePostsBefore(context.Background(), cutoff)
	if n != 0 {
		t.Errorf("expected second delete to remove nothing, got %d", n)
	}
}
