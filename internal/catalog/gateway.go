package catalog

import (
	"context"

	"cafe-kiosk/internal/model"
)

// Gateway is the read side of the product catalog as the order subsystem
// sees it. Implementations return model.ErrProductNotFound for unknown ids
// and wrap model.ErrUpstreamUnavailable when the store cannot be reached.
type Gateway interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

// Loader reads a product feed from some source and returns the decoded
// products. The source string is loader-specific (file path, S3 key).
type Loader interface {
	Load(ctx context.Context, source string) ([]model.Product, error)
}
