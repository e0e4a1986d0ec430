// Package cache stores raw upstream pages for a session seed so repeated
// loads and resets do not burn upstream quota. It caches pages, never grouped
// results.
package cache

import (
	"context"
	"fmt"

	"github.com/kiril6/users-directory/internal/directory/models"
)

// Store is the page cache. GetPage returns sentinel.ErrNotFound (wrapped) on
// a miss.
type Store interface {
	GetPage(ctx context.Context, key string) ([]models.RawRecord, error)
	PutPage(ctx context.Context, key string, page []models.RawRecord) error
}

// PageKey addresses one cached page. The seed pins the key to the session's
// reproducible record stream.
func PageKey(seed string, page, pageSize int) string {
	return fmt.Sprintf("directory:page:%s:%d:%d", seed, page, pageSize)
}
