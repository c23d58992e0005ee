package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gfdmit/web-forum/board-service/internal/logger"
	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
	"github.com/gfdmit/web-forum/board-service/internal/repository/memory"
)

const (
	day       = 24 * time.Hour
	retention = 30 * day
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo repository.Repository, age time.Duration) model.Post {
	t.Helper()
	p, err := repo.CreatePost(context.Background(), model.NewPost(nil, nil, nil, now.Add(-age)))
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return p
}

func fixedClock() time.Time { return now }

func TestRunOnceDeletesOnlyExpired(t *testing.T) {
	repo := memory.New()
	old := seed(t, repo, 31*day)
	young := seed(t, repo, 29*day)
	edge := seed(t, repo, 30*day)

	s := New(repo, logger.Discard(), day, retention, WithClock(fixedClock))
	deleted, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	ctx := context.Background()
	if _, err := repo.GetPost(ctx, old.ID); !errors.Is(err, repository.ErrPostNotFound) {
		t.Errorf("expected 31 day old post gone, got %v", err)
	}
	if _, err := repo.GetPost(ctx, young.ID); err != nil {
		t.Errorf("29 day old post should survive: %v", err)
	}
	if _, err := repo.GetPost(ctx, edge.ID); err != nil {
		t.Errorf("post exactly at the cutoff should survive: %v", err)
	}
}

func TestRunOnceIsIdempotent(t *testing.T) {
	repo := memory.New()
	seed(t, repo, 40*day)
	seed(t, repo, 31*day)
	seed(t, repo, day)

	s := New(repo, logger.Discard(), day, retention, WithClock(fixedClock))
	first, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	second, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if first != 2 || second != 0 {
		t.Fatalf("expected 2 then 0 deletions, got %d then %d", first, second)
	}
}

type failingRepo struct {
	repository.Repository
	deletes atomic.Int32
}

func (f *failingRepo) DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.deletes.Add(1)
	return 0, errors.New("store unavailable")
}

func TestRunKeepsGoingAfterFailures(t *testing.T) {
	repo := &failingRepo{}
	s := New(repo, logger.Discard(), 5*time.Millisecond, retention)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for repo.deletes.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 3 sweep attempts, got %d", repo.deletes.Load())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type panickingRepo struct {
	repository.Repository
}

func (panickingRepo) DeletePostsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	panic("driver bug")
}

func TestSafeSweepRecovers(t *testing.T) {
	s := New(panickingRepo{}, logger.Discard(), day, retention)
	before := failuresTotal.Value()

	s.safeSweep(context.Background())

	if failuresTotal.Value() != before+1 {
		t.Errorf("expected failure counter to increase")
	}
}

type recordingArchive struct {
	posts []model.Post
	err   error
}

func (r *recordingArchive) Archive(ctx context.Context, posts []model.Post, at time.Time) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.posts = append(r.posts, posts...)
	return "posts/test.json", nil
}

func TestArchiveBeforeDelete(t *testing.T) {
	repo := memory.New()
	old := seed(t, repo, 31*day)
	seed(t, repo, day)

	arch := &recordingArchive{}
	s := New(repo, logger.Discard(), day, retention, WithClock(fixedClock), WithArchive(arch))

	deleted, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
	if len(arch.posts) != 1 || arch.posts[0].ID != old.ID {
		t.Fatalf("expected %s archived, got %+v", old.ID, arch.posts)
	}
}

func TestArchiveFailureSkipsDelete(t *testing.T) {
	repo := memory.New()
	old := seed(t, repo, 31*day)

	arch := &recordingArchive{err: errors.New("bucket gone")}
	s := New(repo, logger.Discard(), day, retention, WithClock(fixedClock), WithArchive(arch))

	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected archive error")
	}
	if _, err := repo.GetPost(context.Background(), old.ID); err != nil {
		t.Errorf("post must not be deleted when archiving fails: %v", err)
	}
}

func TestArchiveSkippedWhenNothingExpired(t *testing.T) {
	repo := memory.New()
	seed(t, repo, day)

	arch := &recordingArchive{err: errors.New("should not be called")}
	s := New(repo, logger.Discard(), day, retention, WithClock(fixedClock), WithArchive(arch))

	deleted, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing deleted, got %d", deleted)
	}
}
