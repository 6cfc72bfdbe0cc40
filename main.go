package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "go.uber.org/automaxprocs"

	"mdblog/pkg/config"
	"mdblog/pkg/handlers"
	"mdblog/pkg/logger"
	"mdblog/pkg/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mdblog: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(os.Args[1:]); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(config.LogLevel)
	defer logger.Close()

	site, err := services.LoadSiteConfig(config.SiteFile)
	if err != nil {
		return err
	}

	// Templates are compiled once; the server never starts without them.
	conv := services.NewMarkdownConverter()
	renderer, err := services.LoadTemplates(config.TemplateRoot, conv, site)
	if err != nil {
		return err
	}
	for _, name := range []string{services.IndexTemplate, services.ArticleTemplate} {
		if !renderer.Has(name) {
			return fmt.Errorf("%w: %s", services.ErrTemplateNotFound, name)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	repo := services.NewRepository(config.ContentRoot, log)
	blog := handlers.NewBlog(repo, renderer, conv, config.ShowHidden, log)
	srv := &http.Server{
		Addr:         config.Addr(),
		Handler:      handlers.NewRouter(blog, config.StaticRoot),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", srv.Addr, "content_root", repo.Root(), "template_root", config.TemplateRoot)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
