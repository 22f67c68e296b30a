// Command catalogd serves the cached catalog query layer over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-catalog-cache/catalogcache"
	"github.com/goliatone/go-catalog-cache/config"
	"github.com/goliatone/go-catalog-cache/internal/server"
	"github.com/goliatone/go-catalog-cache/internal/source/httpsource"
	"github.com/goliatone/go-catalog-cache/pkg/di"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const closeTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "catalogd: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(os.Stderr).Level(cfg.Level()).With().Timestamp().Str("service", "catalogd").Logger()

	client, err := httpsource.New(cfg.Source.HTTPSource(), httpsource.WithLogger(logger))
	if err != nil {
		return err
	}

	container, err := di.NewContainer(cfg.Cache.CacheConfig(), di.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	svc := container.NewCatalogService(client, client,
		catalogcache.WithSearchCandidateLimit(cfg.Catalog.SearchCandidateLimit),
		catalogcache.WithCandidateReuse(cfg.Catalog.ReuseSearchCandidates),
	)

	srv := server.New(logger, cfg.HTTPServerAddr, svc)
	if err := srv.Start(); err != nil {
		return err
	}

	logger.Info().
		Str("source", cfg.Source.BaseURL).
		Bool("bounded_cache", cfg.Cache.CacheConfig().Bounded()).
		Msg("catalogd started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
