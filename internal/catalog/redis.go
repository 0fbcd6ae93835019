package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cafe-kiosk/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCatalog implements Gateway over a Redis instance holding one hash
// per product.
type RedisCatalog struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewRedisCatalog creates a catalog gateway backed by the given Redis client.
func NewRedisCatalog(rdb *redis.Client, logger zerolog.Logger) *RedisCatalog {
	return &RedisCatalog{
		rdb:    rdb,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// NewClient connects a Redis client for the catalog store.
func NewClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
}

// GetProduct retrieves a single product by id.
func (c *RedisCatalog) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	fields, err := c.rdb.HGetAll(ctx, productKey(id)).Result()
	if err != nil {
		c.logger.Error().Err(err).Str("product_id", id).Msg("catalog read failed")
		return nil, fmt.Errorf("catalog read for product %s: %w", id, model.ErrUpstreamUnavailable)
	}
	if len(fields) == 0 {
		return nil, model.ErrProductNotFound
	}

	p, err := productFromHash(id, fields)
	if err != nil {
		c.logger.Error().Err(err).Str("product_id", id).Msg("malformed catalog entry")
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return p, nil
}

// PutProducts writes products into the catalog store using a single
// pipeline. Used by the importer; existing hashes are overwritten.
func (c *RedisCatalog) PutProducts(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for _, p := range products {
		attrs, err := json.Marshal(p.Attributes)
		if err != nil {
			return fmt.Errorf("encode attributes for product %s: %w", p.ID, err)
		}
		pipe.HSet(ctx, productKey(p.ID), map[string]any{
			fieldName:          p.Name,
			fieldPriceCents:    strconv.FormatInt(p.PriceCents, 10),
			fieldBonusPoints:   strconv.Itoa(p.BonusPoints),
			fieldActive:        boolField(p.Active),
			fieldCategoryID:    p.CategoryID,
			fieldSubcategoryID: p.SubcategoryID,
			fieldAttributes:    string(attrs),
			fieldUpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error().Err(err).Int("count", len(products)).Msg("catalog import failed")
		return fmt.Errorf("catalog import: %w", err)
	}

	c.logger.Info().Int("count", len(products)).Msg("catalog products written")
	return nil
}

func productFromHash(id string, fields map[string]string) (*model.Product, error) {
	price, err := strconv.ParseInt(fields[fieldPriceCents], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price_cents %q", fields[fieldPriceCents])
	}

	bonus := 0
	if v := fields[fieldBonusPoints]; v != "" {
		bonus, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid bonus_points %q", v)
		}
	}

	var attrs map[string]string
	if v := fields[fieldAttributes]; v != "" && v != "null" {
		if err := json.Unmarshal([]byte(v), &attrs); err != nil {
			return nil, fmt.Errorf("invalid attributes: %w", err)
		}
	}

	var updatedAt time.Time
	if v := fields[fieldUpdatedAt]; v != "" {
		updatedAt, _ = time.Parse(time.RFC3339, v)
	}

	return &model.Product{
		ID:            id,
		Name:          fields[fieldName],
		PriceCents:    price,
		BonusPoints:   bonus,
		Active:        fields[fieldActive] == "1",
		CategoryID:    fields[fieldCategoryID],
		SubcategoryID: fields[fieldSubcategoryID],
		Attributes:    attrs,
		UpdatedAt:     updatedAt,
	}, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
