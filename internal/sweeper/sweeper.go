// Package sweeper deletes posts that outlived the retention period. It runs
// as a background job next to the HTTP server and never stops the process:
// a failed sweep is logged and the next tick tries again.
package sweeper

import (
	"context"
	"expvar"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/internal/archive"
	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
)

var (
	sweepsTotal   = expvar.NewInt("board_sweeps_total")
	failuresTotal = expvar.NewInt("board_sweep_failures_total")
	sweptTotal    = expvar.NewInt("board_posts_swept_total")
)

type Sweeper struct {
	repo      repository.Repository
	archive   archive.Archiver
	log       *logrus.Logger
	interval  time.Duration
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*Sweeper)

// WithArchive makes each sweep store expired posts in a before deleting them.
func WithArchive(a archive.Archiver) Option {
	return func(s *Sweeper) {
		s.archive = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// WithTimeout bounds a single sweep. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		s.timeout = d
	}
}

func New(repo repository.Repository, log *logrus.Logger, interval, retention time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once per interval, counted from the call, until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.WithFields(logrus.Fields{
		"interval":  s.interval.String(),
		"retention": s.retention.String(),
	}).Info("[SWEEPER] started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("[SWEEPER] stopped")
			return
		case <-ticker.C:
			s.safeSweep(ctx)
		}
	}
}

// safeSweep keeps a panicking store driver from taking the process down.
func (s *Sweeper) safeSweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			failuresTotal.Add(1)
			s.log.WithField("panic", r).Error("[SWEEPER] sweep panicked")
		}
	}()
	_, _ = s.RunOnce(ctx)
}

// RunOnce deletes every post created strictly before now minus the retention
// period and returns how many were removed. Errors are logged and returned.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	now := s.now()
	cutoff := model.Cutoff(now, s.retention)
	log := s.log.WithField("cutoff", cutoff.Format(time.RFC3339))

	if s.archive != nil {
		if err := s.archiveExpired(ctx, cutoff, now, log); err != nil {
			failuresTotal.Add(1)
			log.WithError(err).Error("[SWEEPER] archive failed, deletion skipped")
			return 0, err
		}
	}

	deleted, err := s.repo.DeletePostsBefore(ctx, cutoff)
	if err != nil {
		failuresTotal.Add(1)
		log.WithError(err).Error("[SWEEPER] deleting old posts failed")
		return 0, fmt.Errorf("deleting posts before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	sweepsTotal.Add(1)
	sweptTotal.Add(deleted)
	log.WithField("deleted", deleted).Info("[SWEEPER] old posts have been deleted")
	return deleted, nil
}

func (s *Sweeper) archiveExpired(ctx context.Context, cutoff, now time.Time, log *logrus.Entry) error {
	posts, err := s.repo.ExpiredPosts(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listing expired posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}
	name, err := s.archive.Archive(ctx, posts, now)
	if err != nil {
		return fmt.Errorf("archiving %d posts: %w", len(posts), err)
	}
	log.WithFields(logrus.Fields{
		"object": name,
		"posts":  len(posts),
	}).Info("[SWEEPER] expired posts archived")
	return nil
}
