package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"cafe-kiosk/internal/model"

	"github.com/rs/zerolog"
)

// feedRecord is one line of the product feed (gzipped NDJSON).
type feedRecord struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	PriceCents    int64             `json:"price_cents"`
	BonusPoints   int               `json:"bonus_points"`
	Active        bool              `json:"active"`
	CategoryID    string            `json:"category_id"`
	SubcategoryID string            `json:"subcategory_id"`
	Attributes    map[string]string `json:"attributes"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// fileLoader implements Loader for reading gzipped product feeds from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based product feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a gzipped NDJSON product feed file.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Product, error) {
	l.logger.Info().Str("file", filePath).Msg("loading product feed")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open feed file")
		return nil, fmt.Errorf("failed to open feed file %s: %w", filePath, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", filePath, err)
	}
	defer gzipReader.Close()

	products, err := decodeFeed(ctx, gzipReader, l.logger)
	if err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", filePath, err)
	}

	l.logger.Info().Str("file", filePath).Int("count", len(products)).Msg("product feed loaded")
	return products, nil
}

// decodeFeed reads NDJSON product records line by line. Records that fail
// validation are skipped with a warning so one bad row cannot block a whole
// import; malformed JSON aborts.
func decodeFeed(ctx context.Context, r io.Reader, logger zerolog.Logger) ([]model.Product, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var products []model.Product
	lineCount := 0
	skipped := 0

	for scanner.Scan() {
		lineCount++
		if lineCount%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec feedRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineCount, err)
		}

		if rec.ID == "" || rec.PriceCents < 0 || rec.BonusPoints < 0 {
			logger.Warn().
				Int("line", lineCount).
				Str("product_id", rec.ID).
				Msg("skipping invalid feed record")
			skipped++
			continue
		}

		products = append(products, model.Product{
			ID:            rec.ID,
			Name:          rec.Name,
			PriceCents:    rec.PriceCents,
			BonusPoints:   rec.BonusPoints,
			Active:        rec.Active,
			CategoryID:    rec.CategoryID,
			SubcategoryID: rec.SubcategoryID,
			Attributes:    rec.Attributes,
			UpdatedAt:     rec.UpdatedAt,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("feed records skipped")
	}

	return products, nil
}
