package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/DocsChat/internal/adapter/utils"
	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/middleware"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Post("/chat", middleware.ChatHandler)
	r.Router.Post("/ingest", middleware.PostIngestHandler)
	r.Router.Get("/healthz", middleware.GetHandler)

	// no WriteTimeout: /chat holds the connection open for as long as the
	// answer streams
	server = &http.Server{
		Addr:        listenAddr,
		Handler:     r.Router,
		ReadTimeout: config.ReadTimeout,
		IdleTimeout: config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
