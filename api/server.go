package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/migemosearch/config"
	"github.com/meghashyamc/migemosearch/db/kvdb"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
	"github.com/meghashyamc/migemosearch/validation"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	kvdb       kvdb.DB
	searchdb   searchdb.DB
	validator  *validation.Validator
	logger     logger.Logger
}

// Run serves the index daemon until ctx is cancelled or an interrupt arrives.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger,
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	s.router = NewRouter(ctx, s.logger, s.searchdb, s.kvdb, s.validator)
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(s.listen)
	group.Go(func() error { return s.shutdownOnDone(groupCtx) })

	return group.Wait()
}

func (s *server) setupDependencies() error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.searchdb, err = searchdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		s.kvdb.Close()
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.kvdb.Close()
		s.searchdb.Close()
		return err
	}

	return nil
}

func (s *server) listen() error {
	s.logger.Info("index daemon listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("http server stopped", "err", err.Error())
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *server) shutdownOnDone(ctx context.Context) error {
	<-ctx.Done()
	s.logger.Info("starting to shut down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.kvdb.Close()
	s.searchdb.Close()
	if err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		return err
	}

	s.logger.Info("shut down http server successfully")
	return nil
}
