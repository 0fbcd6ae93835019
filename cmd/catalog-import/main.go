// catalog-import loads the product feed (local gzip NDJSON or S3) into the
// Redis catalog store. It is run on deploy and whenever the menu changes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cafe-kiosk/internal/catalog"
	"cafe-kiosk/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting catalog import")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var (
		loader catalog.Loader
		source string
	)
	switch {
	case cfg.Catalog.S3.Enabled:
		loader, err = catalog.NewS3Loader(ctx, cfg.Catalog.S3.Bucket, cfg.Catalog.S3.Region, logger)
		if err != nil {
			return fmt.Errorf("failed to initialise S3 loader: %w", err)
		}
		source = cfg.Catalog.S3.Key
	case cfg.Catalog.FeedPath != "":
		loader = catalog.NewFileLoader(logger)
		source = cfg.Catalog.FeedPath
	default:
		return fmt.Errorf("no feed configured; set CATALOG_FEED_PATH or CATALOG_S3_ENABLED")
	}

	products, err := loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load product feed: %w", err)
	}

	rdb := catalog.NewClient(cfg.Redis.Addr, cfg.Redis.DB)
	defer rdb.Close()

	store := catalog.NewRedisCatalog(rdb, logger)
	if err := store.PutProducts(ctx, products); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	logger.Info().Int("products", len(products)).Str("source", source).Msg("catalog import completed")
	return nil
}
