package httpserver

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/logger"
)

func TestRunStopsOnCancel(t *testing.T) {
	conf := config.HTTPServer{
		BindAddress:     "127.0.0.1",
		BindPort:        "0",
		ShutdownTimeout: time.Second,
	}
	s := New(conf, http.NotFoundHandler(), logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer ln.Close()
	_, port, _ := net.SplitHostPort(ln.Addr().String())

	conf := config.HTTPServer{
		BindAddress:     "127.0.0.1",
		BindPort:        port,
		ShutdownTimeout: time.Second,
	}
	s := New(conf, http.NotFoundHandler(), logger.Discard())

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Run(context.Background())
	}()

	select {
	case err := <-errChan:
		if err == nil {
			t.Fatal("expected listen error for a port in use")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not fail for a port in use")
	}
}
