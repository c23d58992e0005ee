package app

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/archive/minio"
	v1 "github.com/gfdmit/web-forum/board-service/internal/handlers/http/v1"
	"github.com/gfdmit/web-forum/board-service/internal/httpserver"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
	"github.com/gfdmit/web-forum/board-service/internal/repository/memory"
	"github.com/gfdmit/web-forum/board-service/internal/repository/mongo"
	"github.com/gfdmit/web-forum/board-service/internal/repository/postgres"
	"github.com/gfdmit/web-forum/board-service/internal/service"
	"github.com/gfdmit/web-forum/board-service/internal/sweeper"
)

// Run serves the API and runs the retention sweeper until ctx is cancelled
// or the process receives SIGINT/SIGTERM.
func Run(ctx context.Context, conf config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := newRepository(ctx, conf, log)
	if err != nil {
		return fmt.Errorf("error when setting up repository: %w", err)
	}
	defer closeRepository(repo, conf, log)

	sw, err := newSweeper(ctx, repo, conf, log)
	if err != nil {
		return fmt.Errorf("error when setting up sweeper: %w", err)
	}

	svc := service.New(repo, log, service.WithTimeout(conf.Store.Timeout))

	gin.SetMode(conf.HTTPServer.GinMode)
	handler, err := v1.New(svc, log, conf.HTTPServer.StaticDir)
	if err != nil {
		return fmt.Errorf("error when setting up handler: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sw.Run(ctx)
	}()

	err = httpserver.New(conf.HTTPServer, handler, log).Run(ctx)
	stop()
	wg.Wait()
	return err
}

// Sweep runs a single retention sweep and reports how many posts it removed.
func Sweep(ctx context.Context, conf config.Config, log *logrus.Logger) (int64, error) {
	repo, err := newRepository(ctx, conf, log)
	if err != nil {
		return 0, fmt.Errorf("error when setting up repository: %w", err)
	}
	defer closeRepository(repo, conf, log)

	sw, err := newSweeper(ctx, repo, conf, log)
	if err != nil {
		return 0, fmt.Errorf("error when setting up sweeper: %w", err)
	}
	return sw.RunOnce(ctx)
}

func newRepository(ctx context.Context, conf config.Config, log *logrus.Logger) (repository.Repository, error) {
	switch conf.Store.Driver {
	case config.DriverMongo:
		return mongo.New(ctx, conf.Mongo, conf.Store.Timeout, log)
	case config.DriverPostgres:
		return postgres.New(ctx, conf.Postgres, log)
	case config.DriverMemory:
		log.Warn("[SETUP] using in-memory store, posts are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}

func newSweeper(ctx context.Context, repo repository.Repository, conf config.Config, log *logrus.Logger) (*sweeper.Sweeper, error) {
	opts := []sweeper.Option{sweeper.WithTimeout(conf.Sweeper.Interval)}
	if conf.Archive.Enabled {
		arch, err := minio.New(ctx, conf.Archive.MinIO)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sweeper.WithArchive(arch))
	}
	return sweeper.New(repo, log, conf.Sweeper.Interval, conf.Sweeper.Retention, opts...), nil
}

func closeRepository(repo repository.Repository, conf config.Config, log *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := repo.Close(ctx); err != nil {
		log.WithError(err).Error("[SHUTDOWN] closing repository")
	}
}
