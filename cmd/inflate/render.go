package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pthm/inflate"
)

func newRenderCmd(v *viper.Viper) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <page.html>",
		Short: "Inflate a page and write the result",
		Long: `render parses a page, includes every bundle, stylesheet and behavior
file named with --include, waits until they have loaded and the page has been
expanded, and writes the resulting HTML.

Identifiers are resolved against --base, which is either an http(s) URL or a
directory (default: the current directory). Use "-" to read the page from
stdin.`,
		Example: `  inflate render index.html --include components/card.html --include app.js
  inflate render - --base https://example.com/static/ < index.html
  inflate render page.html --base ./web --cache-dir ~/.cache/inflate -o out.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(v)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return runRender(cmd.Context(), cfg, args[0], cmd.InOrStdin(), out)
		},
	}

	f := cmd.Flags()
	f.StringP("base", "b", "", "base URL or directory for identifiers")
	f.StringSliceP("include", "i", nil, "resource to include (repeatable, in order)")
	f.Duration("timeout", 0, "how long to wait for resources (default 10s)")
	f.String("marker", "", "placeholder attribute (default \"inflate\")")
	f.String("cache-dir", "", "directory for the on-disk fetch cache")
	f.Duration("cache-ttl", 0, "how long cached resources stay valid (default 5m)")
	f.String("cache-key", "", "key used to sign or encrypt cache entries")
	f.StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	for key, flag := range map[string]string{
		"base":      "base",
		"include":   "include",
		"timeout":   "timeout",
		"marker":    "marker",
		"cache.dir": "cache-dir",
		"cache.ttl": "cache-ttl",
		"cache.key": "cache-key",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}

	return cmd
}

func runRender(ctx context.Context, cfg config, page string, stdin io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	doc, err := readPage(page, stdin)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	inf := inflate.New(doc,
		inflate.WithFetcher(fetcher),
		inflate.WithLogger(logger),
		inflate.WithLogging(cfg.Debug),
		inflate.WithMarker(cfg.Marker),
		inflate.WithContext(ctx),
	)
	for _, id := range cfg.Include {
		inf.Include(id, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := inf.Wait(ctx); err != nil {
		return err
	}

	return doc.Render(out)
}

func readPage(page string, stdin io.Reader) (*inflate.Document, error) {
	if page == "-" {
		return inflate.ParseDocument(stdin)
	}
	f, err := os.Open(page)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return inflate.ParseDocument(f)
}

// newFetcher picks an HTTP or directory fetcher from the base setting and
// wraps it in a cache when a cache directory is configured.
func newFetcher(cfg config, logger *zap.Logger) (inflate.Fetcher, error) {
	var fetcher inflate.Fetcher
	if strings.HasPrefix(cfg.Base, "http://") || strings.HasPrefix(cfg.Base, "https://") {
		hf, err := inflate.NewHTTPFetcher(cfg.Base, nil)
		if err != nil {
			return nil, err
		}
		fetcher = hf
	} else {
		dir := cfg.Base
		if dir == "" {
			dir = "."
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("base directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("base %s is not a directory", dir)
		}
		fetcher = inflate.FSFetcher{FS: os.DirFS(dir)}
	}

	if cfg.Cache.Dir == "" {
		return fetcher, nil
	}
	if cfg.Cache.Key == "" {
		return nil, fmt.Errorf("cache.key is required with cache.dir")
	}
	disk, err := inflate.NewDiskStore(cfg.Cache.Dir, []byte(cfg.Cache.Key), cfg.Cache.Sensitive, cfg.Cache.TTL)
	if err != nil {
		return nil, err
	}
	logger.Debug("cache enabled", zap.String("dir", cfg.Cache.Dir), zap.Duration("ttl", cfg.Cache.TTL))
	return inflate.NewCachingFetcher(fetcher, cfg.Cache.TTL, disk), nil
}
