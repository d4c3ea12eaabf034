package interfaces

import "context"

// StoreInterface persists independently rewritable keyed records. Load returns
// errs.ErrNotFound for a missing key.
type StoreInterface interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
