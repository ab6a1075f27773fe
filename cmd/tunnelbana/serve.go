package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/randomairborne/tunnelbana/core/config"
	"github.com/randomairborne/tunnelbana/core/etags"
	"github.com/randomairborne/tunnelbana/core/headers"
	"github.com/randomairborne/tunnelbana/core/hidepaths"
	"github.com/randomairborne/tunnelbana/core/logger"
	"github.com/randomairborne/tunnelbana/core/pipeline"
	"github.com/randomairborne/tunnelbana/core/redirects"
	"github.com/randomairborne/tunnelbana/core/server"
	"github.com/randomairborne/tunnelbana/core/static"
	"github.com/randomairborne/tunnelbana/middleware"
)

const (
	headersFile   = "_headers"
	redirectsFile = "_redirects"
)

func runServe(cmd *cobra.Command, args []string) error {
	root := filepath.Clean(args[0])
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("site directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("site directory %s: not a directory", root)
	}

	handler, err := buildSite(root, flagSPA)
	if err != nil {
		return err
	}

	log := slog.Default()
	handler = pipeline.Chain(handler,
		middleware.RequestID(),
		middleware.Logging(log),
	)

	var cfg server.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}

	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, handler)()
}

// buildSite assembles the request pipeline for a site directory: header
// injection, redirects, content-fingerprint ETags, hidden config paths, and
// the file responder with its not-found fallback.
func buildSite(root string, spa bool) (http.Handler, error) {
	log := slog.Default()

	headerGroups, err := headers.Parse(readSiteFile(root, headersFile))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", headersFile, err)
	}
	headerTable, err := headers.Build(headerGroups)
	if err != nil {
		return nil, fmt.Errorf("build %s routes: %w", headersFile, err)
	}

	redirectRules, err := redirects.Parse(readSiteFile(root, redirectsFile))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", redirectsFile, err)
	}
	redirectTable, err := redirects.Build(redirectRules)
	if err != nil {
		return nil, fmt.Errorf("build %s routes: %w", redirectsFile, err)
	}

	start := time.Now()
	tagMap, err := etags.BuildMap(root)
	if err != nil {
		return nil, fmt.Errorf("fingerprint site files: %w", err)
	}
	log.Info("fingerprinted site files",
		logger.Count("files", tagMap.Len()),
		logger.Elapsed(start),
	)

	guard, err := hidepaths.NewBuilder().
		HideAll("/"+headersFile, "/"+redirectsFile).
		Build(hidepaths.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("build hidden paths: %w", err)
	}

	fallback := static.FileHandler(root, "404.html", http.StatusNotFound)
	if spa {
		fallback = static.FileHandler(root, "index.html", http.StatusOK)
	}

	files, err := static.Dir(root, static.WithNotFound(fallback))
	if err != nil {
		return nil, err
	}

	stages := pipeline.Stages{
		Headers:   headerTable.Middleware,
		Redirects: redirectTable.Middleware,
		ETags:     tagMap.Middleware,
		HidePaths: guard.Middleware,
	}
	return stages.Handler(files), nil
}

// readSiteFile reads a config file from the site root. A missing file is the
// same as an empty one.
func readSiteFile(root, name string) string {
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("skipping unreadable config file",
				logger.Path(name),
				logger.Error(err),
			)
		}
		return ""
	}
	return string(data)
}
