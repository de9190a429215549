package ingestion

import (
	"context"

	"github.com/aevon-lab/storefront-signals/internal/catalog"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const (
	defaultMaxUpsertAttempts = 3
	defaultBatchConcurrency  = 4
	defaultMaxBatchLines     = 100
)

// ProductResolver checks that a product exists in the catalog.
type ProductResolver interface {
	Resolve(ctx context.Context, productID string) (*catalog.Product, error)
}

// Options tunes request limits and retry behavior.
type Options struct {
	MaxBodySizeMB     int
	MaxUpsertAttempts int
	BatchConcurrency  int
	MaxBatchLines     int
}

type Service struct {
	store            storage.RecordStore
	products         ProductResolver
	maxBodySizeBytes int
	maxAttempts      int
	batchConcurrency int
	maxBatchLines    int
}

func NewService(store storage.RecordStore, products ProductResolver, opts Options) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if products == nil {
		panic("ingestion: product resolver must not be nil")
	}
	if opts.MaxBodySizeMB <= 0 {
		opts.MaxBodySizeMB = 1 // default to 1MB
	}
	if opts.MaxUpsertAttempts <= 0 {
		opts.MaxUpsertAttempts = defaultMaxUpsertAttempts
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}
	if opts.MaxBatchLines <= 0 {
		opts.MaxBatchLines = defaultMaxBatchLines
	}
	return &Service{
		store:            store,
		products:         products,
		maxBodySizeBytes: opts.MaxBodySizeMB * 1024 * 1024,
		maxAttempts:      opts.MaxUpsertAttempts,
		batchConcurrency: opts.BatchConcurrency,
		maxBatchLines:    opts.MaxBatchLines,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/interactions", s.IngestHandler)
	r.POST("/interactions/purchase-batch", s.PurchaseBatchHandler)
}
