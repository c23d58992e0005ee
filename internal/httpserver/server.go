package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
)

type Server struct {
	server          *http.Server
	shutDownTimeout time.Duration
	log             *logrus.Logger
}

func New(conf config.HTTPServer, handler http.Handler, log *logrus.Logger) *Server {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		Addr:         conf.Addr(),
	}

	s := &Server{
		server:          srv,
		shutDownTimeout: conf.ShutdownTimeout,
		log:             log,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully. It returns
// early with an error if the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.log.WithField("addr", s.server.Addr).Info("[HTTPSERVER] listening")

	errChan := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("[SHUTDOWN] http server shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutDownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}
